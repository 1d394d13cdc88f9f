package push

import "strings"

// Platform identifies which provider a device token routes to.
type Platform string

const (
	// PlatformIOS routes to the Expo transport (provider A).
	PlatformIOS Platform = "ios"
	// PlatformAndroid routes to the FCM transport (provider B).
	PlatformAndroid Platform = "android"
)

// ExpoTokenPrefix is the literal prefix every Expo-issued token carries.
const ExpoTokenPrefix = "ExponentPushToken["

// Classifier decides a token's platform from its textual shape. It is a
// named policy so the fallback for unknown shapes lives in exactly one
// place; call sites never inline string matching.
type Classifier func(token string) Platform

// NewClassifier returns the standard shape-based classifier: tokens with
// the Expo prefix are iOS-oriented, everything else falls back to the
// given platform. Changing the fallback is a product decision, not a code
// path, which is why it is a constructor argument.
func NewClassifier(fallback Platform) Classifier {
	return func(token string) Platform {
		if strings.HasPrefix(token, ExpoTokenPrefix) {
			return PlatformIOS
		}
		return fallback
	}
}

// DefaultClassifier routes non-Expo tokens to FCM, matching how clients
// have registered since platform tagging was introduced.
var DefaultClassifier = NewClassifier(PlatformAndroid)

// Split partitions tokens into (ios, android) batches, preserving the
// relative order within each batch.
func Split(classify Classifier, tokens []string) (ios, android []string) {
	for _, t := range tokens {
		switch classify(t) {
		case PlatformIOS:
			ios = append(ios, t)
		default:
			android = append(android, t)
		}
	}
	return ios, android
}
