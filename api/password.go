package api

import (
	"crypto/subtle"
	"strconv"
	"strings"

	"github.com/awnumar/memguard"

	"github.com/mleone/gatehouse/internal/config"
	"github.com/mleone/gatehouse/internal/util"
)

// hashDescriptorSep separates the salt, iteration count and hex-encoded
// derived key in a stored password hash ("salt:iterations:hex-hash").
const hashDescriptorSep = ":"

// passwordVerifier checks a submitted password against the configured
// operator secret. It is purely functional: no call mutates any state.
//
// When a hash descriptor is configured it takes precedence and the
// plaintext secret is never consulted. The plaintext secret, when used,
// is kept in a memguard Enclave and only opened for the duration of a
// comparison.
type passwordVerifier struct {
	hashDescriptor string
	secret         *memguard.Enclave
	secretLen      int
}

func newPasswordVerifier(cfg config.Config) *passwordVerifier {
	v := &passwordVerifier{hashDescriptor: cfg.PasswordHash}
	if cfg.Password != "" {
		plain := util.Normalize(cfg.Password)
		v.secretLen = len(plain)
		v.secret = memguard.NewEnclave([]byte(plain))
	}
	return v
}

// enabled reports whether password protection is configured at all.
// When false, none of the session/CSRF machinery is engaged.
func (v *passwordVerifier) enabled() bool {
	return v.hashDescriptor != "" || v.secret != nil
}

// verify reports whether candidate matches the configured secret.
// Every internal failure (malformed descriptor, bad hex, derivation
// error) collapses to false; nothing is ever propagated to the caller.
func (v *passwordVerifier) verify(candidate string) bool {
	candidate = util.Normalize(candidate)
	if v.hashDescriptor != "" && strings.Contains(v.hashDescriptor, hashDescriptorSep) {
		return v.verifyHashed(candidate)
	}
	return v.verifyPlaintext(candidate)
}

func (v *passwordVerifier) verifyHashed(candidate string) bool {
	parts := strings.SplitN(v.hashDescriptor, hashDescriptorSep, 3)
	if len(parts) != 3 {
		return false
	}
	salt := []byte(parts[0])
	iterations, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	expected, err := util.HexDecode(parts[2])
	if err != nil {
		return false
	}
	ok, err := util.ComparePBKDF2Key(candidate, salt, iterations, expected)
	if err != nil {
		return false
	}
	return ok
}

func (v *passwordVerifier) verifyPlaintext(candidate string) bool {
	if v.secret == nil {
		return false
	}
	// Length mismatch fails before any content comparison. This leaks
	// whether the candidate's length matches the configured secret's;
	// the hash descriptor path has no such leak and is the recommended
	// configuration.
	if len(candidate) != v.secretLen {
		return false
	}
	buf, err := v.secret.Open()
	if err != nil {
		return false
	}
	defer buf.Destroy()
	return subtle.ConstantTimeCompare([]byte(candidate), buf.Bytes()) == 1
}
