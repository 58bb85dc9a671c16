package wallet

import "errors"

// ErrMalformedSignature is returned by Verify for any signature that is
// not a well-formed 65-byte (r, s, v) secp256k1 signature with a
// canonical low-s value and a valid recovery id — it is never treated
// as a false-but-valid signature.
var ErrMalformedSignature = errors.New("wallet: malformed signature")
