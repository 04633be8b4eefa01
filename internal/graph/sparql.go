package graph

import (
	"strings"

	memerrors "github.com/chenxu233/memexia/internal/errors"
)

// evaluateSPARQL implements the SELECT-only subset spec.md §4.3 allows:
// a conjunction of triple patterns inside WHERE { ... }, each pattern's
// subject/predicate/object either a `?variable`, an `<iri>`, or a bare
// literal. ASK queries return an empty result without evaluating their
// patterns (the original's in-memory store never surfaced boolean results
// either); CONSTRUCT and DESCRIBE are rejected outright.
func evaluateSPARQL(query string, s *memStore) (QueryResult, error) {
	trimmed := strings.TrimSpace(query)
	upper := strings.ToUpper(trimmed)

	switch {
	case strings.HasPrefix(upper, "CONSTRUCT"), strings.HasPrefix(upper, "DESCRIBE"):
		return QueryResult{}, memerrors.New(memerrors.ParseFailure, memerrors.SeverityMedium,
			"graph-shaped query results are not supported, use SELECT")
	case strings.HasPrefix(upper, "ASK"):
		return QueryResult{}, nil
	case strings.HasPrefix(upper, "SELECT"):
		return evaluateSelect(trimmed, s)
	default:
		return QueryResult{}, memerrors.New(memerrors.ParseFailure, memerrors.SeverityMedium,
			"unrecognised query form, expected SELECT or ASK")
	}
}

// triplePattern is one `subject predicate object` clause inside WHERE.
type triplePattern struct {
	subject, predicate, object string
}

func evaluateSelect(query string, s *memStore) (QueryResult, error) {
	vars, body, err := parseSelectClause(query)
	if err != nil {
		return QueryResult{}, err
	}
	patterns, err := parseWhereBody(body)
	if err != nil {
		return QueryResult{}, err
	}

	quads := s.snapshotQuads()
	bindings := []map[string]string{{}}
	for _, p := range patterns {
		var next []map[string]string
		for _, b := range bindings {
			for _, q := range quads {
				merged, ok := matchPattern(p, q, b)
				if ok {
					next = append(next, merged)
				}
			}
		}
		bindings = next
		if len(bindings) == 0 {
			break
		}
	}

	result := QueryResult{}
	for _, b := range bindings {
		row := make(map[string]string)
		if len(vars) == 1 && vars[0] == "*" {
			for k, v := range b {
				row[k] = v
			}
		} else {
			for _, v := range vars {
				if val, ok := b[v]; ok {
					row[v] = val
				}
			}
		}
		result.Bindings = append(result.Bindings, row)
	}
	return result, nil
}

// parseSelectClause extracts the projected variable list and the text
// between the first '{' and its matching '}'.
func parseSelectClause(query string) (vars []string, body string, err error) {
	upper := strings.ToUpper(query)
	wherePos := strings.Index(upper, "WHERE")
	projection := query[len("SELECT"):]
	if wherePos >= 0 {
		projection = query[len("SELECT"):wherePos]
	}
	projection = strings.TrimSpace(projection)
	if projection == "*" {
		vars = []string{"*"}
	} else {
		for _, tok := range strings.Fields(projection) {
			if strings.HasPrefix(tok, "?") {
				vars = append(vars, tok[1:])
			}
		}
	}

	open := strings.IndexByte(query, '{')
	close := strings.LastIndexByte(query, '}')
	if open < 0 || close < 0 || close < open {
		return nil, "", memerrors.New(memerrors.ParseFailure, memerrors.SeverityMedium,
			"malformed query: missing WHERE block")
	}
	return vars, query[open+1 : close], nil
}

// parseWhereBody splits the WHERE block into '.'-terminated triple patterns.
func parseWhereBody(body string) ([]triplePattern, error) {
	var patterns []triplePattern
	for _, clause := range splitTopLevel(body, '.') {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		tokens, err := tokenizePattern(clause)
		if err != nil {
			return nil, err
		}
		if len(tokens) != 3 {
			return nil, memerrors.New(memerrors.ParseFailure, memerrors.SeverityMedium,
				"malformed triple pattern: "+clause)
		}
		patterns = append(patterns, triplePattern{subject: tokens[0], predicate: tokens[1], object: tokens[2]})
	}
	return patterns, nil
}

// splitTopLevel splits s on sep, ignoring occurrences inside <...> or "...".
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	inIRI, inLit := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '<' && !inLit:
			inIRI = true
		case c == '>' && !inLit:
			inIRI = false
		case c == '"':
			inLit = !inLit
		}
		if c == sep && !inIRI && !inLit {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	if strings.TrimSpace(cur.String()) != "" {
		parts = append(parts, cur.String())
	}
	return parts
}

// tokenizePattern splits one triple clause into its three terms.
func tokenizePattern(clause string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(clause) {
		for i < len(clause) && (clause[i] == ' ' || clause[i] == '\t') {
			i++
		}
		if i >= len(clause) {
			break
		}
		switch clause[i] {
		case '<':
			end := strings.IndexByte(clause[i+1:], '>')
			if end < 0 {
				return nil, memerrors.New(memerrors.ParseFailure, memerrors.SeverityMedium, "unterminated <iri> in query")
			}
			tokens = append(tokens, clause[i:i+1+end+1])
			i = i + 1 + end + 1
		case '"':
			j := i + 1
			for j < len(clause) && clause[j] != '"' {
				j++
			}
			if j >= len(clause) {
				return nil, memerrors.New(memerrors.ParseFailure, memerrors.SeverityMedium, "unterminated literal in query")
			}
			tokens = append(tokens, clause[i:j+1])
			i = j + 1
		default:
			j := i
			for j < len(clause) && clause[j] != ' ' && clause[j] != '\t' {
				j++
			}
			tokens = append(tokens, clause[i:j])
			i = j
		}
	}
	return tokens, nil
}

// termValue strips <...>/"..." decoration from a token, reporting whether
// it is a variable (?name), in which case value is the bare name.
func termValue(tok string) (value string, isVar bool) {
	if strings.HasPrefix(tok, "?") {
		return tok[1:], true
	}
	if strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") {
		return tok[1 : len(tok)-1], false
	}
	if strings.HasPrefix(tok, "\"") && strings.HasSuffix(tok, "\"") {
		return tok[1 : len(tok)-1], false
	}
	return tok, false
}

// matchPattern tries to unify pattern against quad under the existing
// bindings, returning an extended binding set on success.
func matchPattern(p triplePattern, q Quad, bindings map[string]string) (map[string]string, bool) {
	merged := make(map[string]string, len(bindings)+3)
	for k, v := range bindings {
		merged[k] = v
	}
	if !unify(p.subject, q.Subject, merged) {
		return nil, false
	}
	if !unify(p.predicate, q.Predicate, merged) {
		return nil, false
	}
	if !unify(p.object, q.Object, merged) {
		return nil, false
	}
	return merged, true
}

func unify(term, value string, bindings map[string]string) bool {
	v, isVar := termValue(term)
	if !isVar {
		return v == value
	}
	if existing, bound := bindings[v]; bound {
		return existing == value
	}
	bindings[v] = value
	return true
}
