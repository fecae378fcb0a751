package claims

import (
	"encoding/json"
	"maps"
	"math"
	"strconv"
	"time"
)

// Standard claim names from OpenID Connect Core §5.1.
const (
	ClaimSubject             = "sub"
	ClaimName                = "name"
	ClaimGivenName           = "given_name"
	ClaimFamilyName          = "family_name"
	ClaimMiddleName          = "middle_name"
	ClaimNickname            = "nickname"
	ClaimPreferredUsername   = "preferred_username"
	ClaimProfile             = "profile"
	ClaimPicture             = "picture"
	ClaimWebsite             = "website"
	ClaimEmail               = "email"
	ClaimEmailVerified       = "email_verified"
	ClaimGender              = "gender"
	ClaimBirthdate           = "birthdate"
	ClaimZoneinfo            = "zoneinfo"
	ClaimLocale              = "locale"
	ClaimPhoneNumber         = "phone_number"
	ClaimPhoneNumberVerified = "phone_number_verified"
	ClaimAddress             = "address"
	ClaimUpdatedAt           = "updated_at"
)

// Identity is a read-only view over a claims payload. Every accessor
// returns ok=false when the claim is absent or of the wrong type; none of
// them fail.
type Identity struct {
	raw        map[string]any
	subjectKey string
}

// Option configures an Identity.
type Option func(*Identity)

// WithSubjectClaim names the claim holding the resource owner identifier.
// Default: "sub".
func WithSubjectClaim(key string) Option {
	return func(i *Identity) {
		if key != "" {
			i.subjectKey = key
		}
	}
}

// New wraps raw. The map is borrowed, not copied; callers must not modify
// it while the Identity is in use.
func New(raw map[string]any, opts ...Option) *Identity {
	i := &Identity{
		raw:        raw,
		subjectKey: ClaimSubject,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SubjectClaim returns the claim key Subject reads.
func (i *Identity) SubjectClaim() string {
	return i.subjectKey
}

// Subject returns the resource owner identifier. Integral numeric
// identifiers are rendered in base 10.
func (i *Identity) Subject() (string, bool) {
	switch v := i.raw[i.subjectKey].(type) {
	case string:
		return v, v != ""
	case nil:
		return "", false
	default:
		n, ok := toInt64(v)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	}
}

// Get returns any claim, standard or not, without type checks.
func (i *Identity) Get(key string) (any, bool) {
	v, ok := i.raw[key]
	return v, ok
}

// Claims returns a shallow copy of the wrapped payload.
func (i *Identity) Claims() map[string]any {
	return maps.Clone(i.raw)
}

// MarshalJSON encodes the wrapped payload unchanged.
func (i *Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.raw)
}

// String claim accessors. Each returns ok=false when the claim is absent or
// not a JSON string.
func (i *Identity) Name() (string, bool)              { return i.str(ClaimName) }
func (i *Identity) GivenName() (string, bool)         { return i.str(ClaimGivenName) }
func (i *Identity) FamilyName() (string, bool)        { return i.str(ClaimFamilyName) }
func (i *Identity) MiddleName() (string, bool)        { return i.str(ClaimMiddleName) }
func (i *Identity) Nickname() (string, bool)          { return i.str(ClaimNickname) }
func (i *Identity) PreferredUsername() (string, bool) { return i.str(ClaimPreferredUsername) }
func (i *Identity) Profile() (string, bool)           { return i.str(ClaimProfile) }
func (i *Identity) Picture() (string, bool)           { return i.str(ClaimPicture) }
func (i *Identity) Website() (string, bool)           { return i.str(ClaimWebsite) }
func (i *Identity) Email() (string, bool)             { return i.str(ClaimEmail) }
func (i *Identity) Gender() (string, bool)            { return i.str(ClaimGender) }
func (i *Identity) Birthdate() (string, bool)         { return i.str(ClaimBirthdate) }
func (i *Identity) Zoneinfo() (string, bool)          { return i.str(ClaimZoneinfo) }
func (i *Identity) Locale() (string, bool)            { return i.str(ClaimLocale) }
func (i *Identity) PhoneNumber() (string, bool)       { return i.str(ClaimPhoneNumber) }

// Boolean claim accessors. Each returns ok=false when the claim is absent or
// not a JSON boolean.
func (i *Identity) EmailVerified() (bool, bool)       { return i.boolean(ClaimEmailVerified) }
func (i *Identity) PhoneNumberVerified() (bool, bool) { return i.boolean(ClaimPhoneNumberVerified) }

// UpdatedAt returns updated_at as seconds since the Unix epoch. Only
// integral numbers are accepted.
func (i *Identity) UpdatedAt() (int64, bool) {
	v, ok := i.raw[ClaimUpdatedAt]
	if !ok {
		return 0, false
	}
	return toInt64(v)
}

// UpdatedTime is UpdatedAt as a time.Time in UTC.
func (i *Identity) UpdatedTime() (time.Time, bool) {
	secs, ok := i.UpdatedAt()
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// Address returns the address claim. It must be a JSON object.
func (i *Identity) Address() (Address, bool) {
	switch v := i.raw[ClaimAddress].(type) {
	case map[string]any:
		return addressFromMap(v), true
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return addressFromMap(m), true
	default:
		return Address{}, false
	}
}

func (i *Identity) str(key string) (string, bool) {
	s, ok := i.raw[key].(string)
	return s, ok
}

func (i *Identity) boolean(key string) (bool, bool) {
	b, ok := i.raw[key].(bool)
	return b, ok
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return wholeFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		// 1700000000.0 and 1.7e9 are whole numbers too.
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return wholeFloat(f)
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func wholeFloat(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
