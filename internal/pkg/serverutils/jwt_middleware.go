package serverutils

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const OperatorIDKey = "operator_id"

// NewJwtMiddleware accepts HS256 bearer tokens carrying an operator_id claim.
func NewJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if secret == "" || err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		operatorID, err := claimInt64(claims[OperatorIDKey])
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		ctx.Locals(OperatorIDKey, operatorID)
		return ctx.Next()
	}
}

// OperatorID reads the operator set by NewJwtMiddleware.
func OperatorID(ctx *fiber.Ctx) (int64, bool) {
	id, ok := ctx.Locals(OperatorIDKey).(int64)
	return id, ok
}

// IssueToken signs an operator token for the HTTP API.
func IssueToken(secret string, operatorID int64, claims jwt.MapClaims) (string, error) {
	all := jwt.MapClaims{OperatorIDKey: strconv.FormatInt(operatorID, 10)}
	for k, v := range claims {
		all[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, all).SignedString([]byte(secret))
}

func claimInt64(v interface{}) (int64, error) {
	switch id := v.(type) {
	case float64:
		return int64(id), nil
	case string:
		return strconv.ParseInt(id, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected operator id claim %T", v)
	}
}
