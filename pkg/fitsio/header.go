package fitsio

import (
	"fmt"
	"strconv"
	"strings"
)

// Card is one header keyword record. Value is a string, int, float64 or
// bool; a nil Value marks a commentary card.
type Card struct {
	Key     string
	Value   any
	Comment string
}

// Header is an ordered list of cards. Keys are unique except for
// commentary cards.
type Header struct {
	cards []Card
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{}
}

// Set replaces the value of key, or appends a new card.
func (h *Header) Set(key string, value any, comment string) {
	for i := range h.cards {
		if h.cards[i].Key == key {
			h.cards[i].Value = value
			h.cards[i].Comment = comment
			return
		}
	}
	h.cards = append(h.cards, Card{Key: key, Value: value, Comment: comment})
}

// Get returns the value of key.
func (h *Header) Get(key string) (any, bool) {
	for _, c := range h.cards {
		if c.Key == key && c.Value != nil {
			return c.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present with a value.
func (h *Header) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Cards returns the cards in order.
func (h *Header) Cards() []Card {
	return h.cards
}

// String returns the string value of key, or "" if it is absent. Numbers
// are formatted.
func (h *Header) String(key string) string {
	v, ok := h.Get(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the integer value of key.
func (h *Header) Int(key string) (int, error) {
	v, ok := h.Get(key)
	if !ok {
		return 0, fmt.Errorf("keyword %s missing", key)
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case float64:
		if x == float64(int(x)) {
			return int(x), nil
		}
	}
	return 0, fmt.Errorf("keyword %s is not an integer: %v", key, v)
}

// Float returns the numeric value of key.
func (h *Header) Float(key string) (float64, error) {
	v, ok := h.Get(key)
	if !ok {
		return 0, fmt.Errorf("keyword %s missing", key)
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("keyword %s is not a number: %v", key, v)
}

// Bool returns the logical value of key.
func (h *Header) Bool(key string) (bool, error) {
	v, ok := h.Get(key)
	if !ok {
		return false, fmt.Errorf("keyword %s missing", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("keyword %s is not logical: %v", key, v)
	}
	return b, nil
}

// nth returns prefix followed by n, e.g. TFORM3.
func nth(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

// formatCard renders c as an 80-character fixed-format record.
func formatCard(c Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8.8s", c.Key)
	if c.Value != nil {
		b.WriteString("= ")
		switch v := c.Value.(type) {
		case string:
			q := "'" + strings.ReplaceAll(v, "'", "''")
			for len(q) < 9 {
				q += " "
			}
			b.WriteString(q + "'")
		case bool:
			if v {
				fmt.Fprintf(&b, "%20s", "T")
			} else {
				fmt.Fprintf(&b, "%20s", "F")
			}
		case int:
			fmt.Fprintf(&b, "%20d", v)
		case float64:
			fmt.Fprintf(&b, "%20s", formatFloat(v))
		default:
			fmt.Fprintf(&b, "%20v", v)
		}
		if c.Comment != "" {
			b.WriteString(" / " + c.Comment)
		}
	} else if c.Comment != "" {
		b.WriteString("  " + c.Comment)
	}
	s := b.String()
	if len(s) > cardLen {
		return s[:cardLen]
	}
	return s + strings.Repeat(" ", cardLen-len(s))
}

// formatFloat always includes a decimal point or exponent, so that the
// value reads back as a float.
func formatFloat(v float64) string {
	s := strings.ToUpper(strconv.FormatFloat(v, 'G', -1, 64))
	if !strings.ContainsAny(s, ".EN") { // N: NAN, INF
		s += ".0"
	}
	return s
}

// parseCard decodes one 80-character record. END and commentary cards have
// a nil Value.
func parseCard(line string) (Card, error) {
	c := Card{Key: strings.TrimSpace(line[:8])}
	if len(line) < 10 || line[8:10] != "= " {
		return c, nil
	}
	s := strings.TrimSpace(line[10:])
	if s == "" {
		return c, nil
	}

	if s[0] == '\'' {
		v, rest, err := parseString(s)
		if err != nil {
			return c, fmt.Errorf("keyword %s: %w", c.Key, err)
		}
		c.Value = v
		c.Comment = trimComment(rest)
		return c, nil
	}

	value := s
	if j := strings.IndexByte(s, '/'); j >= 0 {
		value = s[:j]
		c.Comment = strings.TrimSpace(s[j+1:])
	}
	value = strings.TrimSpace(value)

	switch {
	case value == "":
	case value == "T":
		c.Value = true
	case value == "F":
		c.Value = false
	case value[0] == '(':
		// complex keyword values are not used by OIFITS
	case strings.ContainsAny(value, ".EeDd") || strings.EqualFold(value, "NAN"):
		x, err := strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(value), 64)
		if err != nil {
			return c, fmt.Errorf("keyword %s: bad float %q", c.Key, value)
		}
		c.Value = x
	default:
		x, err := strconv.Atoi(value)
		if err != nil {
			return c, fmt.Errorf("keyword %s: bad value %q", c.Key, value)
		}
		c.Value = x
	}
	return c, nil
}

// parseString reads a quoted string value, where a doubled quote stands
// for one quote. Trailing blanks are not significant.
func parseString(s string) (value, rest string, err error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		return strings.TrimRight(b.String(), " "), s[i+1:], nil
	}
	return "", "", fmt.Errorf("unterminated string")
}

func trimComment(rest string) string {
	rest = strings.TrimSpace(rest)
	return strings.TrimSpace(strings.TrimPrefix(rest, "/"))
}
