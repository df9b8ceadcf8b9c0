// Package iterator walks the spectral data points of an OIFITS dataset.
package iterator

// Iterator is a finite, restartable, pull-based sequence.
//
// Typical use:
//
//	for it.HasNext() {
//	    p, err := it.Next()
//	    if err != nil {
//	        return err
//	    }
//	    process(p)
//	}
type Iterator[T any] interface {
	// HasNext reports whether Next will return another element.
	HasNext() bool

	// Next returns the next element and advances. It fails once the
	// sequence is exhausted.
	Next() (T, error)

	// Rewind resets the iterator to the first element.
	Rewind() error
}
