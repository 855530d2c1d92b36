package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/gridgame-backend/internal/board"
	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
)

const (
	actionConnect = "connect"
	actionNew     = "game:new"
	actionJoin    = "game:join"
	actionTurn    = "game:turn"
	actionRematch = "game:rematch"
	actionLeave   = "game:leave"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Request - what clients put into the payload. Each action reads only the fields it needs.
// PlayerID and Name are read by connect only.
type Request struct {
	PlayerID  string          `json:"player_id"`
	Name      string          `json:"name,omitempty"`
	GameID    string          `json:"game_id,omitempty"`
	Type      string          `json:"type,omitempty"`
	Dimension int             `json:"dimension,omitempty"`
	WinLength int             `json:"win_length,omitempty"`
	Mark      string          `json:"mark,omitempty"`
	Position  *board.Position `json:"position,omitempty"`
}

type Payload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *GameView      `json:"game,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type GameView struct {
	*entity.Game
	EmptyPositions []board.Position `json:"empty_positions"`
}

// UnmarshalJSON - decodes the embedded game through its own loader, which would not run on a nil pointer.
func (that *GameView) UnmarshalJSON(data []byte) error {
	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return err
	}

	var extra struct {
		EmptyPositions []board.Position `json:"empty_positions"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}

	that.Game = &game
	that.EmptyPositions = extra.EmptyPositions

	return nil
}

func newGameView(game *entity.Game) *GameView {
	if game == nil {
		return nil
	}

	return &GameView{
		Game:           game,
		EmptyPositions: game.Board.EmptyPositions(),
	}
}

func encodeMessage(action string, payload Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: body})
}
