package filter

import (
	"github.com/gobwas/glob"

	oierr "oifits/pkg/error"
)

// matchers holds the compiled name patterns for one Apply call.
type matchers struct {
	arr  glob.Glob
	ins  glob.Glob
	corr glob.Glob
}

func compileMatchers(s *Spec) (*matchers, error) {
	var m matchers
	var err error
	if m.arr, err = compilePattern("arrname", s.ArrName); err != nil {
		return nil, err
	}
	if m.ins, err = compilePattern("insname", s.InsName); err != nil {
		return nil, err
	}
	if m.corr, err = compilePattern("corrname", s.CorrName); err != nil {
		return nil, err
	}
	return &m, nil
}

// compilePattern treats an empty pattern as "*".
func compilePattern(field, pattern string) (glob.Glob, error) {
	if pattern == "" {
		pattern = "*"
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, oierr.Newf(oierr.ErrCategoryUsage, oierr.CodeBadPattern,
			"invalid %s pattern %q", field, pattern).WithDetail("%v", err)
	}
	return g, nil
}

// optional matches an optional reference: an empty name always passes.
func optional(g glob.Glob, name string) bool {
	return name == "" || g.Match(name)
}
