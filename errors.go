package png

import "pngdecode/internal/errs"

// Error is the error type returned by every failing decode operation.
// It is an alias for errs.Error so callers can use errors.As to
// recover the failure Kind without importing the internal package.
type Error = errs.Error

// Kind categorizes a decode failure; see errs.Kind.
type Kind = errs.Kind

const (
	KindStructural = errs.KindStructural
	KindValidation = errs.KindValidation
	KindDeflate    = errs.KindDeflate
)

// Is reports whether err is a decode *Error of the given Kind.
func Is(err error, kind Kind) bool {
	return errs.Is(err, kind)
}

// filterTypeError reports an invalid per-row filter type byte. It is
// grouped under the DEFLATE error category alongside the other
// malformed-bitstream failures, even though it is detected during
// filter reconstruction rather than decompression.
func filterTypeError(filterType byte) error {
	return errs.Deflate("bad filter type %d", filterType)
}
