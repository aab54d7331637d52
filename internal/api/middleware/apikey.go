package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/api/response"
)

// timeTokenWindow is the validity window of a time token. The previous window
// is also accepted so a token minted just before a boundary still works.
const timeTokenWindow = 5 * time.Minute

// GenerateTimeToken returns the time token for apiKey in the current window.
func GenerateTimeToken(apiKey string) string {
	return timeToken(apiKey, time.Now())
}

func timeToken(apiKey string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(strconv.FormatInt(at.Unix()/int64(timeTokenWindow.Seconds()), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// APIKey returns a middleware guarding operator endpoints such as a manual
// refresh. Requests must carry X-API-Key equal to apiKey and an X-Time-Token
// from GenerateTimeToken.
//
// Returns 401 Unauthorized for a missing or wrong key or token, and 500 when
// apiKey is empty.
func APIKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				response.RespondError(w, http.StatusInternalServerError, "authentication error", "Authentication not loaded")
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
				return
			}

			token := r.Header.Get("X-Time-Token")
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
				return
			}
			now := time.Now()
			if !hmac.Equal([]byte(token), []byte(timeToken(apiKey, now))) &&
				!hmac.Equal([]byte(token), []byte(timeToken(apiKey, now.Add(-timeTokenWindow)))) {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
