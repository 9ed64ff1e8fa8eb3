package sgmlreader

import "strings"

// predefinedEntities is the XML hard-coded fast path from spec.md §4.11:
// these five names resolve without consulting a DTD at all.
var predefinedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": "\"",
	"apos": "'",
}

// expandNamedEntity resolves a named entity reference (name without the
// leading '&' or trailing ';') to its replacement text. It returns ok=false
// for an undefined entity, in which case the caller keeps "&name" verbatim
// and logs a warning, per spec.md §4.11 and §7.
func (r *Reader) expandNamedEntity(name string) (text string, ok bool) {
	if v, found := predefinedEntities[name]; found {
		return v, true
	}
	if r.dtd == nil {
		return "", false
	}
	v, external, found := r.dtd.LookupEntity(name)
	if !found {
		return "", false
	}
	if external {
		// External entities are resolved by pushing a new Entity source
		// (spec.md §4.3's nested-entity discipline); the replacement text
		// for an external entity is the URI to open, not inline text.
		if err := r.pushExternalEntity(name, v); err != nil {
			r.logf(errUndefinedEntity, "failed to open external entity %q: %v", name, err)
			return "", false
		}
		return "", true // nothing to append; reading continues from the new entity
	}
	return v, true
}

// expandNamedEntitiesInText resolves every "&name;"/"&name" reference left
// verbatim by Entity.ScanLiteral's numeric-only fast path (entity.go's
// scanEntityReferenceInLiteral) against the predefined set and, if a DTD is
// loaded, its declared entities. Undefined names are kept verbatim and
// logged, matching spec.md §7's recovery policy.
func (r *Reader) expandNamedEntitiesInText(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			out.WriteByte(s[i])
			continue
		}
		j := i + 1
		for j < len(s) && s[j] != ';' && s[j] != '&' && s[j] != '<' && s[j] != ' ' {
			j++
		}
		name := s[i+1 : j]
		hasSemi := j < len(s) && s[j] == ';'
		if name == "" {
			out.WriteByte('&')
			continue
		}
		if text, ok := r.expandNamedEntity(name); ok {
			out.WriteString(text)
			i = j
			if !hasSemi {
				i--
			}
			continue
		}
		r.logf(errUndefinedEntity, "%q", name)
		out.WriteByte('&')
		out.WriteString(name)
		if hasSemi {
			out.WriteByte(';')
		}
		i = j
		if !hasSemi {
			i--
		}
	}
	return out.String()
}
