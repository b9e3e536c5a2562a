package websocket

import (
	"github.com/aukilabs/raido/spatial"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

type MsgType string

const (
	MsgTypeError MsgType = "error"

	MsgTypeCategoryAdd         MsgType = "category_add"
	MsgTypeCategoryAddResponse MsgType = "category_add_response"

	MsgTypeEntityAdd            MsgType = "entity_add"
	MsgTypeEntityAddResponse    MsgType = "entity_add_response"
	MsgTypeEntityDelete         MsgType = "entity_delete"
	MsgTypeEntityDeleteResponse MsgType = "entity_delete_response"
	MsgTypeEntityUpdatePosition MsgType = "entity_update_position"

	MsgTypeQueryNearest                MsgType = "query_nearest"
	MsgTypeQueryNearestResponse        MsgType = "query_nearest_response"
	MsgTypeQueryKNearest               MsgType = "query_k_nearest"
	MsgTypeQueryKNearestResponse       MsgType = "query_k_nearest_response"
	MsgTypeQueryWithinDistance         MsgType = "query_within_distance"
	MsgTypeQueryWithinDistanceResponse MsgType = "query_within_distance_response"
)

// Msg is the wire envelope for both requests and responses. Fields not
// relevant to a message type are left empty.
type Msg struct {
	Type          MsgType   `json:"type"`
	Category      string    `json:"category,omitempty"`
	Dimensions    int       `json:"dimensions,omitempty"`
	MinMoved      float64   `json:"min_moved,omitempty"`
	RecreateAfter int       `json:"recreate_after,omitempty"`
	EntityID      uint32    `json:"entity_id,omitempty"`
	Position      *Position `json:"position,omitempty"`
	K             int       `json:"k,omitempty"`
	Distance      float64   `json:"distance,omitempty"`
	Points        []Point   `json:"points,omitempty"`
	Removed       bool      `json:"removed,omitempty"`
	Error         string    `json:"error,omitempty"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p *Position) toVec3() spatial.Vec3 {
	return spatial.NewVec3(p.X, p.Y, p.Z)
}

// Point is one query result, a coordinate with the entity it belongs
// to.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	EntityID uint32  `json:"entity_id"`
}

func pointsPayload(points []spatial.TrackedPoint) []Point {
	payload := make([]Point, len(points))
	for i, p := range points {
		payload[i] = Point{
			X:        p.Position.X,
			Y:        p.Position.Y,
			Z:        p.Position.Z,
			EntityID: uint32(p.Entity),
		}
	}
	return payload
}

// Codec encodes messages with the same json codec the logs and errors
// encoders use.
var Codec = websocket.Codec{
	Marshal: func(v any) ([]byte, byte, error) {
		data, err := json.Marshal(v)
		return data, websocket.TextFrame, err
	},
	Unmarshal: func(data []byte, payloadType byte, v any) error {
		return json.Unmarshal(data, v)
	},
}
