package services

import (
	"errors"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/shared"
)

// AuthMiddleware verifies the upstream-issued JWT and resolves (or
// provisions) the profile behind its fid. Handlers downstream only ever see
// the internal profile id.
type AuthMiddleware struct {
	context.DefaultService

	sqlSvc *PostgresService
	jwtSvc *JWTService
}

const AUTH_MIDDLEWARE_SVC = "auth"

func (svc AuthMiddleware) Id() string {
	return AUTH_MIDDLEWARE_SVC
}

func (svc *AuthMiddleware) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func (svc *AuthMiddleware) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		claims, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if claims.Fid == "" {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid fid in token")
		}

		profile, err := svc.resolveProfile(claims.Fid, claims.PrimaryAddress)
		if err != nil {
			return err
		}

		c.Locals(shared.UserID, profile.ID)
		c.Locals(shared.PrimaryAddress, profile.PrimaryAddress)
		return c.Next()
	}
}

// resolveProfile loads the profile for the fid, creating it on first sight.
// A claims address always wins over a stale stored one.
func (svc *AuthMiddleware) resolveProfile(fid, primaryAddress string) (*model.Profile, error) {
	profile, err := svc.sqlSvc.GetProfileByFid(fid)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewInternalError(err, "Failed to load profile")
		}

		profile, err = svc.sqlSvc.CreateProfile(&model.Profile{
			Fid:            fid,
			PrimaryAddress: primaryAddress,
		})
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to provision profile")
		}
	}

	if primaryAddress != "" && profile.PrimaryAddress != primaryAddress {
		profile.PrimaryAddress = primaryAddress
		if err := svc.sqlSvc.UpdateProfileAddress(profile.ID, primaryAddress); err != nil {
			return nil, shared.NewInternalError(err, "Failed to update profile address")
		}
	}

	if err := svc.sqlSvc.TouchLastSignIn(profile.ID); err != nil {
		return nil, shared.NewInternalError(err, "Failed to update sign-in time")
	}

	return profile, nil
}
