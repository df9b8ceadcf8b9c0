package merge

import (
	"oifits/pkg/logging"
	"oifits/pkg/oifits"
)

// mergeHeaders combines primary headers field by field. A value shared by
// every input that sets it is kept; conflicting values become MULTIPLE.
// DATE-OBS is the midpoint day between the earliest and latest input dates.
func mergeHeaders(inputs []*oifits.Dataset) oifits.Header {
	var out oifits.Header
	fields := out.Fields()

	for i, f := range fields {
		if f.Keyword == "DATE-OBS" {
			continue
		}
		for _, ds := range inputs {
			v := *ds.Header.Fields()[i].Value
			if v == "" {
				continue
			}
			switch *f.Value {
			case "":
				*f.Value = v
			case v, Multiple:
			default:
				*f.Value = Multiple
			}
		}
	}

	out.DateObs = midpointDate(inputs)
	return out
}

// midpointDate returns the day halfway between the earliest and latest
// DATE-OBS of the inputs, or "" when no input is dated.
func midpointDate(inputs []*oifits.Dataset) string {
	first, last := 0, 0
	found := false
	for _, ds := range inputs {
		if ds.Header.DateObs == "" {
			continue
		}
		mjd, err := oifits.ParseDate(ds.Header.DateObs)
		if err != nil {
			logging.WithComponent("merge").Warn("ignoring unparseable DATE-OBS",
				"date_obs", ds.Header.DateObs, "error", err)
			continue
		}
		if !found || mjd < first {
			first = mjd
		}
		if !found || mjd > last {
			last = mjd
		}
		found = true
	}
	if !found {
		return ""
	}
	return oifits.FormatDate((first + last) / 2)
}
