package core

import "strings"

// PhoneTarget selects the canonical output form of a Normalizer.
type PhoneTarget string

const (
	// TargetLocal is the bare national subscriber form (e.g. 9933671339),
	// expected by gateways that key recipients without a country code.
	TargetLocal PhoneTarget = "local"
	// TargetE164 is the +<countrycode><subscriber> international form,
	// expected by hosted verify services and used for user-record matching.
	TargetE164 PhoneTarget = "e164"
)

// Normalizer canonicalizes heterogeneous phone input for one locale. It is
// total: malformed input is cleaned best-effort and passed through rather than
// rejected, leaving the final word to the delivery gateway.
type Normalizer struct {
	CountryCode   string // calling code digits, no plus (e.g. "63")
	TrunkPrefix   string // domestic trunk digit (e.g. "0")
	SubscriberLen int    // bare subscriber length (e.g. 10)
	Target        PhoneTarget
}

// DefaultNormalizer handles Philippine mobile numbers.
func DefaultNormalizer(target PhoneTarget) Normalizer {
	return Normalizer{CountryCode: "63", TrunkPrefix: "0", SubscriberLen: 10, Target: target}
}

// Normalize returns the canonical form for the configured target. It is
// idempotent for every supported input shape.
func (n Normalizer) Normalize(raw string) string {
	return n.render(n.subscriber(cleanPhone(raw)))
}

// Local returns the bare subscriber form regardless of the configured target.
func (n Normalizer) Local(raw string) string {
	return n.subscriber(cleanPhone(raw))
}

// E164 returns the +<countrycode> form regardless of the configured target.
// This is the canonical form written back to user records.
func (n Normalizer) E164(raw string) string {
	sub := n.subscriber(cleanPhone(raw))
	if strings.HasPrefix(sub, "+") {
		return sub
	}
	return "+" + n.CountryCode + sub
}

// subscriber reduces cleaned input to the bare subscriber number by applying
// the first matching rule: +<cc> prefix, bare <cc> prefix at full length,
// trunk prefix at domestic length, or the cleaned digits unchanged (covers
// both the already-bare case and the best-effort fallback).
func (n Normalizer) subscriber(cleaned string) string {
	cc := n.CountryCode
	switch {
	case strings.HasPrefix(cleaned, "+"+cc):
		return cleaned[len(cc)+1:]
	case strings.HasPrefix(cleaned, cc) && len(cleaned) >= len(cc)+n.SubscriberLen:
		return cleaned[len(cc):]
	case n.TrunkPrefix != "" && strings.HasPrefix(cleaned, n.TrunkPrefix) &&
		len(cleaned) == len(n.TrunkPrefix)+n.SubscriberLen:
		return cleaned[len(n.TrunkPrefix):]
	default:
		return cleaned
	}
}

func (n Normalizer) render(sub string) string {
	if n.Target != TargetE164 {
		return sub
	}
	if strings.HasPrefix(sub, "+") {
		return sub
	}
	return "+" + n.CountryCode + sub
}

// cleanPhone strips everything except digits and one leading plus.
func cleanPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
