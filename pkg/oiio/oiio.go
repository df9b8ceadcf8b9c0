// Package oiio reads and writes OIFITS datasets as FITS files.
//
// The reader is lenient: tables that cannot be decoded are logged and
// skipped, and only a missing or unreadable OI_TARGET aborts the read. The
// writer emits tables in a fixed order (target, arrays, wavelengths,
// correlations, polarisation, OI_VIS, OI_VIS2, OI_T3, OI_FLUX) and numbers
// EXTVER from 1 within each extension name.
package oiio

import (
	"errors"
	"io"
	"io/fs"
	"os"

	oierr "oifits/pkg/error"
	"oifits/pkg/fitsio"
	"oifits/pkg/logging"
	"oifits/pkg/oifits"
)

// Read loads the OIFITS file at path.
func Read(path string) (*oifits.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oierr.Wrap(err, oierr.CodeReadFailed, "Read", "oiio").WithDetail("%s", path)
	}
	defer f.Close()

	log := logging.WithFile(path)
	log.Debug("reading")
	ds, err := Decode(f)
	if err != nil {
		return nil, oierr.Wrap(err, oierr.CodeReadFailed, "Read", "oiio")
	}
	log.Info("read", "targets", len(ds.Targets.Targets),
		"vis", ds.CountTables(oifits.KindVis), "vis2", ds.CountTables(oifits.KindVis2),
		"t3", ds.CountTables(oifits.KindT3), "flux", ds.CountTables(oifits.KindFlux))
	return ds, nil
}

// Decode reads an OIFITS dataset from r. The returned dataset has its
// name indices built.
func Decode(r io.Reader) (*oifits.Dataset, error) {
	f, err := fitsio.Decode(r)
	if err != nil {
		return nil, oierr.Wrap(err, oierr.CodeMalformedHeader, "Decode", "oiio")
	}
	return fromFile(f)
}

// Write saves ds to path. An existing file is replaced only when clobber
// is set. A failed write removes the partial file.
func Write(ds *oifits.Dataset, path string, clobber bool) (err error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !clobber {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return oierr.New(oierr.ErrCategoryUsage, oierr.CodeFileExists,
				"output file exists").WithDetail("%s (use clobber to overwrite)", path)
		}
		return oierr.Wrap(err, oierr.CodeWriteFailed, "Write", "oiio")
	}

	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = oierr.Wrap(cerr, oierr.CodeWriteFailed, "Write", "oiio")
		}
		if err != nil {
			if rerr := os.Remove(path); rerr != nil {
				logging.WithFile(path).Warn("cannot remove partial output", "error", rerr)
			}
		}
	}()

	if err := Encode(ds, f); err != nil {
		return oierr.Wrap(err, oierr.CodeWriteFailed, "Write", "oiio")
	}
	logging.WithFile(path).Info("written")
	return nil
}

// Encode writes ds to w.
func Encode(ds *oifits.Dataset, w io.Writer) error {
	f, err := toFile(ds)
	if err != nil {
		return err
	}
	return fitsio.Encode(w, f)
}
