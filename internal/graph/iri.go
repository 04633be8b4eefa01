package graph

import (
	"fmt"
	"strings"
)

const (
	fileNodePrefix      = "urn:memexia:file:"
	generatedNodePrefix = "urn:memexia:generated:"
	edgePrefix          = "urn:memexia:edge:"
	predicateNamespace  = "memexia:"
)

// unreservedIRIChars is the set spec.md §6/§8 requires to survive
// percent-encoding unescaped: RFC 3986 unreserved plus the sub-delims
// and gen-delims the original's encode_iri_component left alone.
const unreservedIRIChars = "-_.~!$&'()*+,;=:@/"

func isUnreservedIRIByte(b byte) bool {
	if b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' {
		return true
	}
	return strings.IndexByte(unreservedIRIChars, b) >= 0
}

// EncodeIRIComponent percent-encodes every byte outside the unreserved
// set (testable property in spec.md §8: non-ASCII and other reserved
// bytes are escaped byte-by-byte, never character-by-character, so the
// result is valid for arbitrary UTF-8 input).
func EncodeIRIComponent(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isUnreservedIRIByte(b) {
			sb.WriteByte(b)
		} else {
			fmt.Fprintf(&sb, "%%%02X", b)
		}
	}
	return sb.String()
}

// DecodeIRIComponent reverses EncodeIRIComponent; malformed escapes pass through verbatim.
func DecodeIRIComponent(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			var b byte
			if _, err := fmt.Sscanf(s[i+1:i+3], "%02X", &b); err == nil {
				sb.WriteByte(b)
				i += 2
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// FileNodeID builds a file-backed node IRI from a repository-relative path.
// Backslashes are normalised to slashes before encoding, per spec.md §4.2.
func FileNodeID(relPath string) string {
	normalized := strings.ReplaceAll(relPath, "\\", "/")
	return fileNodePrefix + EncodeIRIComponent(normalized)
}

// GeneratedNodeID builds a synthetic node IRI from a UUID string.
func GeneratedNodeID(uuid string) string {
	return generatedNodePrefix + uuid
}

// IsFileNodeID reports whether id has the file-node prefix.
func IsFileNodeID(id string) bool {
	return strings.HasPrefix(id, fileNodePrefix)
}

// EdgeID builds the stable, idempotent edge IRI urn:memexia:edge:<from>-<to>.
// from/to are the full node IRIs; their file-node or generated-node prefix is
// stripped before the two suffixes are joined, so ParseEdgeID must split on
// the FIRST hyphen only, since to may itself
// contain hyphens (this mirrors the original's parts[0]/parts[1..] split).
func EdgeID(from, to string) string {
	fromSuffix := strings.TrimPrefix(from, fileNodePrefix)
	fromSuffix = strings.TrimPrefix(fromSuffix, generatedNodePrefix)
	toSuffix := strings.TrimPrefix(to, fileNodePrefix)
	toSuffix = strings.TrimPrefix(toSuffix, generatedNodePrefix)
	return fmt.Sprintf("%s%s-%s", edgePrefix, fromSuffix, toSuffix)
}

// ParseEdgeID splits an edge IRI's suffix on the first '-' only, returning
// the raw from/to suffixes (not full IRIs - the caller resolves those by
// context, since the suffix alone does not say which node-prefix applies).
func ParseEdgeID(id string) (fromSuffix, toSuffix string, ok bool) {
	suffix := strings.TrimPrefix(id, edgePrefix)
	if suffix == id {
		return "", "", false
	}
	idx := strings.IndexByte(suffix, '-')
	if idx < 0 {
		return "", "", false
	}
	return suffix[:idx], suffix[idx+1:], true
}

// Predicate builds a memexia: predicate IRI.
func Predicate(name string) string {
	return predicateNamespace + name
}
