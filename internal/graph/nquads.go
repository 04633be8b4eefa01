package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Quad is a single RDF statement in the default graph. It carries no
// graph name, since this store uses only the default graph (spec.md §4.4).
type Quad struct {
	Subject   string
	Predicate string
	Object    string
	IsLiteral bool
}

// escapeIRI escapes the characters N-Quads forbids inside <...>.
func escapeIRI(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		">", "\\>",
		" ", "\\u0020",
	)
	return r.Replace(s)
}

func unescapeIRI(s string) string {
	r := strings.NewReplacer(
		"\\u0020", " ",
		"\\>", ">",
		"\\\\", "\\",
	)
	return r.Replace(s)
}

// escapeString escapes a literal's body for use inside "..." in N-Quads.
func escapeString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString("\\\\")
		case '"':
			sb.WriteString("\\\"")
		case '\n':
			sb.WriteString("\\n")
		case '\r':
			sb.WriteString("\\r")
		case '\t':
			sb.WriteString("\\t")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func unescapeString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				sb.WriteByte('\\')
				i++
				continue
			case '"':
				sb.WriteByte('"')
				i++
				continue
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			case 'r':
				sb.WriteByte('\r')
				i++
				continue
			case 't':
				sb.WriteByte('\t')
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// encodeLine renders one quad as an N-Quads line, terminated by " .\n".
func encodeLine(q Quad) string {
	var obj string
	if q.IsLiteral {
		obj = fmt.Sprintf("%q", "") // placeholder, overwritten below
		obj = "\"" + escapeString(q.Object) + "\""
	} else {
		obj = "<" + escapeIRI(q.Object) + ">"
	}
	return fmt.Sprintf("<%s> <%s> %s .\n", escapeIRI(q.Subject), escapeIRI(q.Predicate), obj)
}

// parseLine tokenizes a single N-Quads line (subject, predicate, object, trailing '.').
// It is a small hand-rolled, quote/angle-bracket-aware reader: tokens are
// either <...> (IRI) or "..." (literal, with \" escapes respected), separated
// by whitespace, with the line's remainder after the last token discarded
// (the trailing graph name/'.'  is not used by this single-default-graph store).
func parseLine(line string) (q Quad, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Quad{}, false
	}

	var tokens []string
	var isLiteral []bool
	i := 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			break
		}
		switch line[i] {
		case '<':
			end := strings.IndexByte(line[i+1:], '>')
			if end < 0 {
				return Quad{}, false
			}
			tokens = append(tokens, unescapeIRI(line[i+1:i+1+end]))
			isLiteral = append(isLiteral, false)
			i = i + 1 + end + 1
		case '"':
			j := i + 1
			for j < len(line) {
				if line[j] == '\\' {
					j += 2
					continue
				}
				if line[j] == '"' {
					break
				}
				j++
			}
			if j >= len(line) {
				return Quad{}, false
			}
			tokens = append(tokens, unescapeString(line[i+1:j]))
			isLiteral = append(isLiteral, true)
			i = j + 1
		case '.':
			i = len(line)
		default:
			i++
		}
		if len(tokens) >= 3 {
			break
		}
	}

	if len(tokens) < 3 {
		return Quad{}, false
	}
	return Quad{
		Subject:   tokens[0],
		Predicate: tokens[1],
		Object:    tokens[2],
		IsLiteral: isLiteral[2],
	}, true
}

// encodeQuads renders a slice of quads as N-Quads text.
func encodeQuads(quads []Quad) string {
	var sb strings.Builder
	for _, q := range quads {
		sb.WriteString(encodeLine(q))
	}
	return sb.String()
}

// decodeQuads parses N-Quads text into quads, skipping malformed lines.
func decodeQuads(text string) []Quad {
	var quads []Quad
	for _, line := range strings.Split(text, "\n") {
		if q, ok := parseLine(line); ok {
			quads = append(quads, q)
		}
	}
	return quads
}

// encodeEdgeObject builds the edge object-position value: plain target
// IRI unless strength != 1.0 or a description is present, in which case
// a compatibility shim `<to>|<rel-lc>:<strength>:<description>` is used
// (spec.md §4.4/§6: the known fidelity limitation pending edge reification).
func encodeEdgeObject(e *Edge) (object string, isLiteral bool) {
	if e.Strength == 1.0 && e.Description == "" {
		return e.To, false
	}
	return fmt.Sprintf("%s|%s:%s:%s", e.To, e.Relation.Lowercase(), formatFloat(e.Strength), e.Description), true
}

// decodeEdgeObject reverses encodeEdgeObject, recovering strength/description
// when present; isLiteral false means the object was a plain target IRI.
func decodeEdgeObject(object string, isLiteral bool) (to string, strength float64, description string) {
	if !isLiteral {
		return object, 1.0, ""
	}
	parts := strings.SplitN(object, "|", 2)
	if len(parts) != 2 {
		return object, 1.0, ""
	}
	to = parts[0]
	rest := strings.SplitN(parts[1], ":", 3)
	strength = 1.0
	if len(rest) >= 2 {
		if v, err := strconv.ParseFloat(rest[1], 64); err == nil {
			strength = clamp01(v)
		}
	}
	if len(rest) >= 3 {
		description = rest[2]
	}
	return to, strength, description
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
