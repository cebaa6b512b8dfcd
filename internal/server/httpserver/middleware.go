package httpserver

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/insight/internal/common"
	"github.com/dmitrijs2005/insight/internal/logging"
	"github.com/dmitrijs2005/insight/internal/requestid"
	"github.com/dmitrijs2005/insight/internal/server/users"
)

const currentUserKey = "currentUser"

// requestIDMiddleware resolves the correlation identifier for the request:
// the inbound X-Request-ID header when present, a fresh UUID otherwise. The
// identifier is echoed on the response and carried by the request context,
// where the logging middleware picks it up. The binding dies with the
// context, so it cannot bleed into another request.
func (s *HTTPServer) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if id == "" {
			id = requestid.New()
		}
		c.Header(requestid.Header, id)

		c.Request = c.Request.WithContext(requestid.ToContext(c.Request.Context(), id))
		c.Next()
	}
}

// requestLoggingMiddleware binds a request-scoped logger (request id, method,
// path) into the context and emits exactly one completion log line per
// request, carrying the elapsed processing time and the final status code. A
// panic in a handler is logged with its stack before the generic failure
// response is produced; the deferred block runs on every exit path, including
// cancellation.
func (s *HTTPServer) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := c.Request.Context()
		reqLogger := s.logger.With(
			"request_id", requestid.FromContext(ctx),
			"http_method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Request = c.Request.WithContext(logging.ToContext(ctx, reqLogger))

		defer func() {
			ctx := c.Request.Context()
			log := logging.FromContext(ctx)

			if r := recover(); r != nil {
				log.Error(ctx, "unhandled panic",
					"panic", r,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errorEnvelope{Detail: http.StatusText(http.StatusInternalServerError)})
			}

			log.Info(ctx, "request completed",
				"status_code", c.Writer.Status(),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}()

		c.Next()
	}
}

// basicAuth resolves the current user from HTTP Basic credentials and stores
// it in the gin context for the handler.
func (s *HTTPServer) basicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="insight"`)
			s.abortWithError(c, common.ErrInvalidCredentials)
			return
		}

		ctx := c.Request.Context()
		user, err := s.users.Authenticate(ctx, username, password)
		if err != nil {
			c.Header("WWW-Authenticate", `Basic realm="insight"`)
			s.abortWithError(c, err)
			return
		}

		s.bindCurrentUser(c, user)
		c.Next()
	}
}

// bearerAuth resolves the current user from a bearer token and, when an
// allow-list is given, applies the role gate on top of authentication.
func (s *HTTPServer) bearerAuth(allowed ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			s.abortWithError(c, common.ErrInvalidToken)
			return
		}

		ctx := c.Request.Context()
		user, err := s.users.ResolveToken(ctx, token)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		if len(allowed) > 0 {
			if err := users.RequireRoles(user, allowed...); err != nil {
				s.abortWithError(c, err)
				return
			}
		}

		s.bindCurrentUser(c, user)
		c.Next()
	}
}

// bindCurrentUser stores the resolved user for the handler and adds the
// username to the request-scoped logging context.
func (s *HTTPServer) bindCurrentUser(c *gin.Context, user *users.InternalUser) {
	c.Set(currentUserKey, user)

	ctx := c.Request.Context()
	log := logging.FromContext(ctx).With("username", user.Username)
	c.Request = c.Request.WithContext(logging.ToContext(ctx, log))
}

func currentUser(c *gin.Context) *users.InternalUser {
	user, _ := c.MustGet(currentUserKey).(*users.InternalUser)
	return user
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
