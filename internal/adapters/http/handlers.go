package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geocoin/internal/core/domain"
)

type createSessionRequest struct {
	ID string `json:"id"`
}

type positionRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// TakeResponse is returned after a coin is taken.
type TakeResponse struct {
	Taken   *domain.Coin        `json:"taken"`
	Session *domain.SessionView `json:"session"`
}

// DepositResponse is returned after a deposit. Deposited is null when the
// inventory was empty.
type DepositResponse struct {
	Deposited *domain.Coin        `json:"deposited"`
	Session   *domain.SessionView `json:"session"`
}

// RulesResponse describes the board every session plays on.
type RulesResponse struct {
	CellSize         float64           `json:"cell_size"`
	Radius           int               `json:"radius"`
	CacheProbability float64           `json:"cache_probability"`
	InitialCoinsMin  int               `json:"initial_coins_min"`
	InitialCoinsMax  int               `json:"initial_coins_max"`
	Start            domain.Coordinate `json:"start"`
}

// RulesHandler returns the world rules.
func RulesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r := deps.Game.Rules()
		return c.JSON(RulesResponse{
			CellSize:         r.CellSize,
			Radius:           r.Radius,
			CacheProbability: r.CacheProbability,
			InitialCoinsMin:  r.InitialCoinsMin,
			InitialCoinsMax:  r.InitialCoinsMax,
			Start:            r.Start,
		})
	}
}

// CreateSessionHandler opens a session. A body id resumes that session's
// persisted trail; without one a fresh id is allocated.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createSessionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		view, err := deps.Game.Open(c.UserContext(), req.ID)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// GetSessionHandler returns the session read model.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Game.View(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// CloseSessionHandler drops a session from memory.
func CloseSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Game.Close(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MoveHandler steps the player one cell.
func MoveHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Game.Move(c.UserContext(), c.Params("id"), c.Params("direction"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// PositionHandler moves the player to an absolute coordinate.
func PositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req positionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Lat == nil || req.Lng == nil {
			return errBadRequest(c, "lat and lng are required")
		}

		pos := domain.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
		view, err := deps.Game.UpdatePosition(c.UserContext(), c.Params("id"), pos, "http")
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// ResetHandler returns the session to its initial state.
func ResetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Game.Reset(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// TakeHandler moves one coin from a live cache into the inventory. The
// optional origin query selects a deposited coin minted in another cell.
func TakeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		serial, err := strconv.Atoi(c.Params("serial"))
		if err != nil || serial < 0 {
			return errBadRequest(c, "serial must be a non-negative integer")
		}

		coin, view, err := deps.Game.Take(c.UserContext(), c.Params("id"), c.Params("key"), serial, c.Query("origin"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(TakeResponse{Taken: coin, Session: view})
	}
}

// DepositHandler moves the most recently taken coin into a live cache.
func DepositHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		coin, view, err := deps.Game.Deposit(c.UserContext(), c.Params("id"), c.Params("key"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(DepositResponse{Deposited: coin, Session: view})
	}
}

// TrailHandler returns the movement trail, paginated.
func TrailHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trail, err := deps.Game.Trail(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}

		return c.JSON(paginate(c, trail))
	}
}
