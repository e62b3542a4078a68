package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/galp2508/shavzak-sub000/pkg/models"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))
var jwtAlgorithm = jwt.SigningMethodHS256

// Token lifetime per policy.
const tokenLifetime = 7 * 24 * time.Hour

// Claims is the signed identity carried by every bearer token.
type Claims struct {
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role"`
	PlatoonID string      `json:"platoon_id,omitempty"`
	SquadID   string      `json:"squad_id,omitempty"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken signs a 7-day HS256 token for the user.
func CreateToken(userID string, role models.Role, platoonID, squadID string) (string, error) {
	expirationTime := time.Now().Add(tokenLifetime)
	claims := &Claims{
		UserID:    userID,
		Role:      role,
		PlatoonID: platoonID,
		SquadID:   squadID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(jwtSecret)
}

// VerifyToken validates a bearer token and returns its claims.
func VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// CanEditPerson enforces the edit predicate: a platoon-commander,
// squad-commander, or sergeant may edit entities in their platoon; a squad
// leader may edit persons in their own squad within their platoon.
func CanEditPerson(actor *Claims, targetPlatoonID, targetSquadID string, admin bool) bool {
	if admin {
		return true
	}
	switch actor.Role {
	case models.RolePlatoonCommander, models.RoleSquadCommander, models.RoleSergeant:
		return actor.PlatoonID == targetPlatoonID
	default:
		return actor.SquadID != "" &&
			actor.PlatoonID == targetPlatoonID &&
			actor.SquadID == targetSquadID
	}
}

// CanViewRoster: any member of a platoon may view that platoon's rosters.
// Rosters without a platoon are company-wide and visible to all members.
func CanViewRoster(actor *Claims, rosterPlatoonID string, admin bool) bool {
	if admin || rosterPlatoonID == "" {
		return true
	}
	return actor.PlatoonID == rosterPlatoonID
}
