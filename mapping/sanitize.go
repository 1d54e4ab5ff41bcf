package mapping

import "strings"

// NameSanitizer cleans resource display names into valid backend object
// names. Sanitize is idempotent: the digit prefix is applied before
// truncation so a second pass over an already-sanitized name is a no-op.
type NameSanitizer struct {
	cfg NamingConfig
}

// NewNameSanitizer builds a sanitizer, filling config defaults: replacement
// "_", max length 32, digit prefix "obj_".
func NewNameSanitizer(cfg NamingConfig) *NameSanitizer {
	if cfg.ReplacementChar == "" {
		cfg.ReplacementChar = "_"
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 32
	}
	if cfg.DigitPrefix == "" {
		cfg.DigitPrefix = "obj_"
	}
	return &NameSanitizer{cfg: cfg}
}

// Sanitize returns the cleaned name. Empty input becomes "unnamed".
func (s *NameSanitizer) Sanitize(name string) string {
	if name == "" {
		return "unnamed"
	}

	switch s.cfg.CaseHandling {
	case "upper":
		name = strings.ToUpper(name)
	case "lower":
		name = strings.ToLower(name)
	}

	for _, invalid := range s.cfg.InvalidChars {
		name = strings.ReplaceAll(name, invalid, s.cfg.ReplacementChar)
	}

	if name[0] >= '0' && name[0] <= '9' {
		// The prefix follows the configured case folding, otherwise a second
		// pass would re-fold it into a different name.
		prefix := s.cfg.DigitPrefix
		switch s.cfg.CaseHandling {
		case "upper":
			prefix = strings.ToUpper(prefix)
		case "lower":
			prefix = strings.ToLower(prefix)
		}
		name = prefix + name
	}

	if len(name) > s.cfg.MaxLength {
		name = name[:s.cfg.MaxLength]
	}

	return name
}
