package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geocoin/internal/core/domain"
)

// buildSchema creates the GraphQL schema over the session read model.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	cellType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cell",
		Fields: graphql.Fields{
			"row": &graphql.Field{Type: graphql.Int},
			"col": &graphql.Field{Type: graphql.Int},
			"key": &graphql.Field{Type: graphql.String},
		},
	})

	coinType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coin",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"row":    &graphql.Field{Type: graphql.Int},
			"col":    &graphql.Field{Type: graphql.Int},
			"serial": &graphql.Field{Type: graphql.Int},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lng": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lng": &graphql.Field{Type: graphql.Float},
		},
	})

	cacheType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cache",
		Fields: graphql.Fields{
			"key":    &graphql.Field{Type: graphql.String},
			"cell":   &graphql.Field{Type: cellType},
			"center": &graphql.Field{Type: coordinateType},
			"bounds": &graphql.Field{Type: boundsType},
			"coins":  &graphql.Field{Type: graphql.NewList(coinType)},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"player":           &graphql.Field{Type: coordinateType},
			"player_cell":      &graphql.Field{Type: cellType},
			"inventory":        &graphql.Field{Type: graphql.NewList(coinType)},
			"caches":           &graphql.Field{Type: graphql.NewList(cacheType)},
			"saved_caches":     &graphql.Field{Type: graphql.Int},
			"trail_length":     &graphql.Field{Type: graphql.Int},
			"trail_distance_m": &graphql.Field{Type: graphql.Float},
			"coins_minted":     &graphql.Field{Type: graphql.Int},
		},
	})

	rulesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Rules",
		Fields: graphql.Fields{
			"cell_size":         &graphql.Field{Type: graphql.Float},
			"radius":            &graphql.Field{Type: graphql.Int},
			"cache_probability": &graphql.Field{Type: graphql.Float},
			"initial_coins_min": &graphql.Field{Type: graphql.Int},
			"initial_coins_max": &graphql.Field{Type: graphql.Int},
			"start":             &graphql.Field{Type: coordinateType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Read model of an open session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					view, err := deps.Game.View(p.Context, id)
					if err != nil {
						return nil, err
					}
					return sessionMap(view), nil
				},
			},
			"rules": &graphql.Field{
				Type:        rulesType,
				Description: "Board rules shared by every session",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r := deps.Game.Rules()
					return map[string]interface{}{
						"cell_size":         r.CellSize,
						"radius":            r.Radius,
						"cache_probability": r.CacheProbability,
						"initial_coins_min": r.InitialCoinsMin,
						"initial_coins_max": r.InitialCoinsMax,
						"start":             coordinateMap(r.Start),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func coordinateMap(c domain.Coordinate) map[string]interface{} {
	return map[string]interface{}{"lat": c.Lat, "lng": c.Lng}
}

func cellMap(c domain.GridCell) map[string]interface{} {
	return map[string]interface{}{"row": c.Row, "col": c.Col, "key": c.Key()}
}

func coinsList(coins []domain.Coin) []map[string]interface{} {
	out := make([]map[string]interface{}, len(coins))
	for i, c := range coins {
		out[i] = map[string]interface{}{"id": c.ID(), "row": c.Row, "col": c.Col, "serial": c.Serial}
	}
	return out
}

func sessionMap(v *domain.SessionView) map[string]interface{} {
	caches := make([]map[string]interface{}, len(v.Caches))
	for i, c := range v.Caches {
		caches[i] = map[string]interface{}{
			"key":    c.Key,
			"cell":   cellMap(c.Cell),
			"center": coordinateMap(c.Center),
			"bounds": map[string]interface{}{
				"min_lat": c.Bounds.MinLat,
				"min_lng": c.Bounds.MinLng,
				"max_lat": c.Bounds.MaxLat,
				"max_lng": c.Bounds.MaxLng,
			},
			"coins": coinsList(c.Coins),
		}
	}
	return map[string]interface{}{
		"id":               v.ID,
		"player":           coordinateMap(v.Player),
		"player_cell":      cellMap(v.PlayerCell),
		"inventory":        coinsList(v.Inventory),
		"caches":           caches,
		"saved_caches":     v.SavedCaches,
		"trail_length":     v.TrailLength,
		"trail_distance_m": v.TrailDistance,
		"coins_minted":     v.CoinsMinted,
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
