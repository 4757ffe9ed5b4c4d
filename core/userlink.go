package core

import (
	"context"
	"time"

	"github.com/sikad-ph/otpkit/docstore"
)

const usersCollection = "users"

// PhoneFormat derives one historical storage format from the bare subscriber
// number.
type PhoneFormat func(local string) string

// DefaultPhoneFormats covers the four shapes found in historical user records,
// in probe priority order: bare local, trunk-prefixed domestic, +<cc> E.164,
// and <cc> without the plus.
func DefaultPhoneFormats(countryCode, trunkPrefix string) []PhoneFormat {
	return []PhoneFormat{
		func(l string) string { return l },
		func(l string) string { return trunkPrefix + l },
		func(l string) string { return "+" + countryCode + l },
		func(l string) string { return countryCode + l },
	}
}

// UserLinkResolver locates a user document by probing historical phone-number
// formats and, on match, marks the phone verified and rewrites the stored
// phone to the single canonical E.164 form. A compatibility shim for records
// written before phone storage was standardized.
type UserLinkResolver struct {
	docs       docstore.Store
	collection string
	formats    []PhoneFormat
	canonical  PhoneFormat
}

func NewUserLinkResolver(docs docstore.Store) *UserLinkResolver {
	return &UserLinkResolver{
		docs:       docs,
		collection: usersCollection,
		formats:    DefaultPhoneFormats("63", "0"),
		canonical:  func(l string) string { return "+63" + l },
	}
}

// WithFormats replaces the probe list. Order is probe priority.
func (r *UserLinkResolver) WithFormats(formats []PhoneFormat, canonical PhoneFormat) *UserLinkResolver {
	if len(formats) > 0 {
		r.formats = formats
	}
	if canonical != nil {
		r.canonical = canonical
	}
	return r
}

func (r *UserLinkResolver) WithCollection(name string) *UserLinkResolver {
	if name != "" {
		r.collection = name
	}
	return r
}

// MarkVerified probes the candidate formats in order and updates the first
// matching user document. found=false means no record matched any format;
// that is not an error.
func (r *UserLinkResolver) MarkVerified(ctx context.Context, local string) (found bool, err error) {
	for _, format := range r.formats {
		docs, err := r.docs.Query(ctx, r.collection, "phone", format(local), 1)
		if err != nil {
			return false, err
		}
		if len(docs) == 0 {
			continue
		}
		fields := map[string]any{
			"phoneVerified":   true,
			"phoneVerifiedAt": time.Now().UTC().Format(time.RFC3339),
			// Standardize the stored phone while we are here.
			"phone": r.canonical(local),
		}
		if err := r.docs.Update(ctx, r.collection, docs[0].Key, fields); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
