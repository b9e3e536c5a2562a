package websocket

import (
	"io"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/raido/models"
	"github.com/aukilabs/raido/spatial"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// RealtimeHandler serves the realtime protocol over one WebSocket
// connection: entity lifecycle and movement reports in, query results
// out. The spatial trees themselves are only patched by the category
// frame loop.
type RealtimeHandler struct {
	// The shared category registry.
	Categories *models.CategoryStore

	// Default tree policy for categories added by clients. Per category
	// overrides can be passed on the category_add message.
	TreeConfig spatial.TreeConfig

	// Recreate trees on every frame with movement instead of patching.
	ForceRecreate bool

	// Time until an idle client is disconnected.
	ClientIdleTimeout time.Duration
}

// HandleConnect runs the receive loop for one client connection until
// the client disconnects or idles out.
func (h *RealtimeHandler) HandleConnect(conn *websocket.Conn) {
	clientID := uuid.NewString()

	wsConnectedClients.Inc()
	defer wsConnectedClients.Dec()

	logs.WithTag("client_id", clientID).Debug("client connected")
	defer logs.WithTag("client_id", clientID).Debug("client disconnected")

	for {
		if h.ClientIdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(h.ClientIdleTimeout))
		}

		var msg Msg
		if err := Codec.Receive(conn, &msg); err != nil {
			if err != io.EOF {
				logs.WithTag("client_id", clientID).
					Debug(errors.New("receiving message failed").Wrap(err))
			}
			return
		}
		wsReceivedMsgs.WithLabelValues(string(msg.Type)).Inc()

		res := h.HandleMsg(msg)
		if res == nil {
			continue
		}
		if res.Type == MsgTypeError {
			wsHandleErrors.WithLabelValues(string(msg.Type)).Inc()
		}

		if err := Codec.Send(conn, res); err != nil {
			logs.WithTag("client_id", clientID).
				WithTag("msg_type", res.Type).
				Warn(errors.New("sending message failed").Wrap(err))
			return
		}
		wsSentMsgs.WithLabelValues(string(res.Type)).Inc()
	}
}

// HandleMsg dispatches one message and returns the response to send,
// or nil when the message type has no response.
func (h *RealtimeHandler) HandleMsg(msg Msg) *Msg {
	switch msg.Type {
	case MsgTypeCategoryAdd:
		return h.handleCategoryAdd(msg)

	case MsgTypeEntityAdd:
		return h.handleEntityAdd(msg)

	case MsgTypeEntityDelete:
		return h.handleEntityDelete(msg)

	case MsgTypeEntityUpdatePosition:
		return h.handleEntityUpdatePosition(msg)

	case MsgTypeQueryNearest:
		return h.handleQueryNearest(msg)

	case MsgTypeQueryKNearest:
		return h.handleQueryKNearest(msg)

	case MsgTypeQueryWithinDistance:
		return h.handleQueryWithinDistance(msg)

	default:
		return errResponse(errors.New("unsupported message type").
			WithTag("msg_type", msg.Type))
	}
}

func (h *RealtimeHandler) handleCategoryAdd(msg Msg) *Msg {
	if msg.Category == "" {
		return errResponse(errors.New("category name is empty"))
	}

	cfg := h.TreeConfig
	if msg.MinMoved != 0 {
		cfg.MinMoved = msg.MinMoved
	}
	if msg.RecreateAfter != 0 {
		cfg.RecreateAfter = msg.RecreateAfter
	}

	var tree spatial.SpatialAccess
	switch msg.Dimensions {
	case 0, spatial.Dims3D:
		tree = spatial.NewRTree3D(cfg)
	case spatial.Dims2D:
		tree = spatial.NewRTree2D(cfg)
	default:
		return errResponse(errors.New("unsupported dimension count").
			WithTag("dimensions", msg.Dimensions))
	}

	if err := h.Categories.Add(models.NewCategory(msg.Category, tree, h.ForceRecreate)); err != nil {
		return errResponse(err)
	}

	return &Msg{Type: MsgTypeCategoryAddResponse, Category: msg.Category}
}

func (h *RealtimeHandler) handleEntityAdd(msg Msg) *Msg {
	c, res := h.category(msg)
	if res != nil {
		return res
	}
	if msg.Position == nil {
		return errResponse(errors.New("entity position is missing"))
	}

	if err := c.AddEntity(spatial.EntityID(msg.EntityID), msg.Position.toVec3()); err != nil {
		return errResponse(err)
	}

	return &Msg{
		Type:     MsgTypeEntityAddResponse,
		Category: msg.Category,
		EntityID: msg.EntityID,
	}
}

func (h *RealtimeHandler) handleEntityDelete(msg Msg) *Msg {
	c, res := h.category(msg)
	if res != nil {
		return res
	}

	return &Msg{
		Type:     MsgTypeEntityDeleteResponse,
		Category: msg.Category,
		EntityID: msg.EntityID,
		Removed:  c.RemoveEntity(spatial.EntityID(msg.EntityID)),
	}
}

// Position updates have no response, matching their per frame volume.
func (h *RealtimeHandler) handleEntityUpdatePosition(msg Msg) *Msg {
	c, res := h.category(msg)
	if res != nil {
		return res
	}
	if msg.Position == nil {
		return errResponse(errors.New("entity position is missing"))
	}

	if err := c.MoveEntity(spatial.EntityID(msg.EntityID), msg.Position.toVec3()); err != nil {
		return errResponse(err)
	}
	return nil
}

func (h *RealtimeHandler) handleQueryNearest(msg Msg) *Msg {
	c, res := h.category(msg)
	if res != nil {
		return res
	}
	if msg.Position == nil {
		return errResponse(errors.New("query position is missing"))
	}

	response := &Msg{
		Type:     MsgTypeQueryNearestResponse,
		Category: msg.Category,
	}
	if p, ok := c.NearestNeighbour(msg.Position.toVec3()); ok {
		response.Points = pointsPayload([]spatial.TrackedPoint{p})
	}
	return response
}

func (h *RealtimeHandler) handleQueryKNearest(msg Msg) *Msg {
	c, res := h.category(msg)
	if res != nil {
		return res
	}
	if msg.Position == nil {
		return errResponse(errors.New("query position is missing"))
	}

	return &Msg{
		Type:     MsgTypeQueryKNearestResponse,
		Category: msg.Category,
		Points:   pointsPayload(c.KNearestNeighbours(msg.Position.toVec3(), msg.K)),
	}
}

func (h *RealtimeHandler) handleQueryWithinDistance(msg Msg) *Msg {
	c, res := h.category(msg)
	if res != nil {
		return res
	}
	if msg.Position == nil {
		return errResponse(errors.New("query position is missing"))
	}

	return &Msg{
		Type:     MsgTypeQueryWithinDistanceResponse,
		Category: msg.Category,
		Points:   pointsPayload(c.WithinDistance(msg.Position.toVec3(), msg.Distance)),
	}
}

func (h *RealtimeHandler) category(msg Msg) (*models.Category, *Msg) {
	c, ok := h.Categories.Get(msg.Category)
	if !ok {
		return nil, errResponse(errors.New("category is not added").
			WithTag("category", msg.Category))
	}
	return c, nil
}

func errResponse(err error) *Msg {
	return &Msg{Type: MsgTypeError, Error: err.Error()}
}
