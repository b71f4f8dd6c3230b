package listings

import (
	"unicode/utf8"

	"github.com/accswap/accswap-backend/pkg/db/models"
)

const (
	trustTwoFactorPoints     = 30
	trustPhoneVerifiedPoints = 30
	trustPayoutVPAPoints     = 10
	trustVerifiedPoints      = 20
	trustDescriptionPoints   = 10
	trustDescriptionMinLen   = 50
	trustMaxScore            = 100
)

// TrustScore derives a 0-100 confidence score from the seller's profile
// signals and the listing itself.
func TrustScore(profile *models.Profile, listing *models.Listing) int {
	score := 0

	if profile != nil {
		if profile.TwoFactorEnabled {
			score += trustTwoFactorPoints
		}
		if profile.PhoneVerified {
			score += trustPhoneVerifiedPoints
		}
		if profile.PayoutVPA != nil && *profile.PayoutVPA != "" {
			score += trustPayoutVPAPoints
		}
	}

	if listing != nil {
		if listing.Verified {
			score += trustVerifiedPoints
		}
		if utf8.RuneCountInString(listing.Description) > trustDescriptionMinLen {
			score += trustDescriptionPoints
		}
	}

	if score > trustMaxScore {
		score = trustMaxScore
	}
	return score
}
