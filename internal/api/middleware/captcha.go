package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salemre/backend/internal/captcha"
	"salemre/backend/internal/config"
	"salemre/backend/internal/logging"
)

// Captcha headers: X-C-V carries a Turnstile challenge response, X-C-T the
// human token issued after a successful challenge.
const (
	HeaderChallenge  = "X-C-V"
	HeaderHumanToken = "X-C-T"
)

// CaptchaMiddleware guards a route with Cloudflare Turnstile. It is a no-op
// when no Turnstile secret is configured.
func CaptchaMiddleware(cfg *config.Config, verifier captcha.Verifier) gin.HandlerFunc {
	logger := logging.Component("captcha")
	return func(c *gin.Context) {
		if !verifier.Enabled() {
			c.Next()
			return
		}
		ip := c.ClientIP()

		if tok := c.GetHeader(HeaderHumanToken); tok != "" && verifier.ValidateHumanToken(tok, ip) {
			c.Next()
			return
		}

		ok, err := verifier.Verify(c.Request.Context(), c.GetHeader(HeaderChallenge), ip)
		if err != nil {
			logger.Error().Err(err).Str("ip", ip).Msg("turnstile verification error")
			abort(c, http.StatusServiceUnavailable, "captcha verification unavailable")
			return
		}
		if !ok {
			abort(c, http.StatusForbidden, "captcha verification failed")
			return
		}

		if tok, err := verifier.GenerateHumanToken(ip, cfg.CaptchaTokenTTL); err != nil {
			logger.Error().Err(err).Msg("failed to issue human token")
		} else {
			c.Header(HeaderHumanToken, tok)
		}
		c.Next()
	}
}
