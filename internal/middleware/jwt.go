package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and role claims into the request
// context.  The subject must be a decimal user ID.
func JWTAuth(secret string) echo.MiddlewareFunc {
    parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return unauthorized(c, "missing bearer token")
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims := jwt.MapClaims{}
            tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return unauthorized(c, "invalid token")
            }

            sub, err := claims.GetSubject()
            if err != nil {
                return unauthorized(c, "invalid claims")
            }
            id, err := strconv.ParseUint(sub, 10, 64)
            if err != nil || id == 0 {
                return unauthorized(c, "invalid claims")
            }
            role, _ := claims["role"].(string)

            c.Set(ctxUserID, id)
            c.Set(ctxRole, role)
            return next(c)
        }
    }
}

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": msg, "error": "unauthorized"})
}
