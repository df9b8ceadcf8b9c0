package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"oifits/pkg/check"
	"oifits/pkg/oifits/oitest"
)

func TestCheckReportClean(t *testing.T) {
	out := CheckReport("clean.fits", check.RunAll(oitest.Default(), 0))

	assert.Contains(t, out, "Checking clean.fits")
	for _, c := range check.Checks() {
		assert.Contains(t, out, c.Name)
	}
	assert.Contains(t, out, "0 of 9 checks failed, worst level OK")
}

func TestCheckReportBreaches(t *testing.T) {
	ds := oitest.Default()
	for i := range ds.Vis2[0].Records {
		ds.Vis2[0].Records[i].TargetID = 99
	}
	out := CheckReport("bad.fits", check.RunAll(ds, 3))

	assert.Contains(t, out, "OI_VIS2 #1 record 1: TARGET_ID 99")
	assert.NotContains(t, out, "OI_VIS2 #1 record 4: TARGET_ID 99")
	assert.Contains(t, out, "... 7 more")
	assert.Contains(t, out, "NOT CONFORMANT")
	assert.Equal(t, 1, strings.Count(out, "checks failed"))
}
