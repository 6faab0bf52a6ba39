package middleware

import (
	"context"
	"net/http"

	"skm-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AdminCookieName is the httpOnly cookie carrying the admin JWT.
const AdminCookieName = "adminToken"

type contextKey string

const adminIDKey contextKey = "admin_id"

// AdminFinder checks that the authenticated admin still exists.
type AdminFinder interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Admin, error)
}

// AdminAuth guards admin routes: it reads the adminToken cookie, verifies
// the HS256 JWT and confirms the admin record still exists before putting
// the admin id into the request context.
func AdminAuth(jwtSecret string, admins AdminFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AdminCookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w, "not authorized, no token")
				return
			}

			token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				writeUnauthorized(w, "not authorized, token failed")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeUnauthorized(w, "not authorized, token failed")
				return
			}
			idHex, _ := claims["admin_id"].(string)
			id, err := bson.ObjectIDFromHex(idHex)
			if err != nil {
				writeUnauthorized(w, "not authorized, token failed")
				return
			}

			admin, err := admins.FindByID(r.Context(), id)
			if err != nil {
				http.Error(w, `{"message":"internal server error"}`, http.StatusInternalServerError)
				return
			}
			if admin == nil {
				writeUnauthorized(w, "not authorized, admin not found")
				return
			}

			ctx := context.WithValue(r.Context(), adminIDKey, idHex)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminID returns the authenticated admin's id hex, or "" when the
// request did not pass AdminAuth.
func GetAdminID(ctx context.Context) string {
	id, _ := ctx.Value(adminIDKey).(string)
	return id
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
