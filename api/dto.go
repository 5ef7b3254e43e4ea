package api

import (
	"strconv"

	"github.com/wricardo/loot-road-game/internal/geom"
	"github.com/wricardo/loot-road-game/internal/model"
)

type mapSummaryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roadDTO struct {
	X0 float64  `json:"x0"`
	Y0 float64  `json:"y0"`
	X1 *float64 `json:"x1,omitempty"`
	Y1 *float64 `json:"y1,omitempty"`
}

type buildingDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type officeDTO struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

type lootTypeDTO struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Extra string `json:"extra,omitempty"`
}

type mapDetail struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Roads     []roadDTO     `json:"roads"`
	Buildings []buildingDTO `json:"buildings"`
	Offices   []officeDTO   `json:"offices"`
	LootTypes []lootTypeDTO `json:"lootTypes"`
}

func mapDetailDTO(m *model.Map) mapDetail {
	out := mapDetail{ID: m.ID, Name: m.Name}

	for _, r := range m.Roads {
		rd := roadDTO{X0: r.Start.X, Y0: r.Start.Y}
		if r.Orientation == geom.Horizontal {
			end := r.End.X
			rd.X1 = &end
		} else {
			end := r.End.Y
			rd.Y1 = &end
		}
		out.Roads = append(out.Roads, rd)
	}

	for _, b := range m.Buildings {
		out.Buildings = append(out.Buildings, buildingDTO{X: b.X, Y: b.Y, W: b.W, H: b.H})
	}

	for _, o := range m.Offices {
		out.Offices = append(out.Offices, officeDTO{ID: o.ID, X: o.Position.X, Y: o.Position.Y, OffsetX: o.OffsetX, OffsetY: o.OffsetY})
	}

	for _, lt := range m.LootTypes {
		out.LootTypes = append(out.LootTypes, lootTypeDTO{Name: lt.Name, Value: lt.Value, Extra: lt.Extra})
	}

	return out
}

type joinResponseDTO struct {
	AuthToken string `json:"authToken"`
	PlayerID  int    `json:"playerId"`
}

type pointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type bagItemDTO struct {
	ID   int `json:"id"`
	Type int `json:"type"`
}

type playerStateDTO struct {
	Pos   pointDTO     `json:"pos"`
	Speed pointDTO     `json:"speed"`
	Dir   string       `json:"dir"`
	Bag   []bagItemDTO `json:"bag"`
	Score int          `json:"score"`
}

type lostObjectDTO struct {
	Type int      `json:"type"`
	Pos  pointDTO `json:"pos"`
}

type stateResponse struct {
	Players     map[string]playerStateDTO `json:"players"`
	LostObjects map[string]lostObjectDTO  `json:"lostObjects"`
}

func stateDTO(dogs []*model.Dog, loot []model.Loot) stateResponse {
	out := stateResponse{
		Players:     make(map[string]playerStateDTO, len(dogs)),
		LostObjects: make(map[string]lostObjectDTO, len(loot)),
	}

	for _, d := range dogs {
		bag := make([]bagItemDTO, 0, len(d.Bag))
		for _, l := range d.Bag {
			bag = append(bag, bagItemDTO{ID: l.ID, Type: l.Type})
		}
		out.Players[strconv.Itoa(d.ID)] = playerStateDTO{
			Pos:   pointDTO{X: d.Position.X, Y: d.Position.Y},
			Speed: pointDTO{X: d.Speed.X, Y: d.Speed.Y},
			Dir:   string(d.Direction),
			Bag:   bag,
			Score: d.Score,
		}
	}

	for _, l := range loot {
		out.LostObjects[strconv.Itoa(l.ID)] = lostObjectDTO{
			Type: l.Type,
			Pos:  pointDTO{X: l.Position.X, Y: l.Position.Y},
		}
	}

	return out
}

type recordDTO struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	PlayTime int64  `json:"playTime"`
}
