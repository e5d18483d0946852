package auth

const (
	dummyPassword   = "ats-portal-timing-equalizer"
	minSecretLength = 32
)

const (
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse assertion: %w"
	msgInvalidTokenClaims      = "invalid assertion claims"
	msgSecretTooShortFmt       = "exchange secret must be at least %d bytes"
	msgIssuerRequired          = "exchange issuer is required"
	msgAudienceRequired        = "exchange audience is required"
	msgDirectoryReadFmt        = "user directory: read %s: %w"
	msgDirectoryDecodeFmt      = "user directory: decode: %w"
	msgDirectoryEntryFmt       = "user directory: entry %d: %w"
	msgDirectoryDuplicateFmt   = "user directory: duplicate email %s"
	msgDirectoryDummyHashFmt   = "user directory: dummy hash: %w"
	msgDirectoryBadIDFmt       = "user directory: entry %d: invalid id: %w"
)
