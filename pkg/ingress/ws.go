// Package ingress is the narrow outward surface of the round framework:
// observers connect over websocket to stream lifecycle events and to
// report damage into the active round. It is not a game transport.
package ingress

import (
	"context"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"github.com/rumpusparty/rumpus/pkg/round"
	"github.com/rumpusparty/rumpus/pkg/utils"
)

const (
	DamageOp = 1
	EventOp  = 2
)

// DamageMessage is an inbound damage report frame.
type DamageMessage struct {
	Op       int    `cbor:"1,keyasint"`
	Victim   int    `cbor:"2,keyasint"`
	Attacker int    `cbor:"3,keyasint"`
	Amount   int    `cbor:"4,keyasint"`
	Source   string `cbor:"5,keyasint"`
}

// EventMessage is an outbound lifecycle notification frame.
type EventMessage struct {
	Op        int    `cbor:"1,keyasint"`
	Kind      string `cbor:"2,keyasint"`
	RoundType string `cbor:"3,keyasint"`
	Outcome   string `cbor:"4,keyasint"`
	Winners   []int  `cbor:"5,keyasint"`
}

type Gateway struct {
	damage *round.DamageBus
	events *utils.Topic[round.Event]
}

func NewGateway(damage *round.DamageBus, events *utils.Topic[round.Event]) *Gateway {
	return &Gateway{
		damage: damage,
		events: events,
	}
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageBinary, msg)
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to accept websocket client")
		return
	}
	defer c.Close(websocket.StatusInternalError, "")

	err = g.handle(r.Context(), c)
	if err != nil && ctxAlive(r.Context()) {
		log.Debug().Err(err).Msg("websocket client left")
	}
	c.Close(websocket.StatusNormalClosure, "")
}

func ctxAlive(ctx context.Context) bool {
	return ctx.Err() == nil
}

func (g *Gateway) handle(ctx context.Context, c *websocket.Conn) error {
	session := utils.NewSession(ctx)
	defer session.Cancel()
	ctx = session.Ctx()
	defer func() {
		log.Debug().Dur("connected", session.Elapsed()).Msg("observer disconnected")
	}()

	sub := g.events.Subscribe()
	defer sub.Done()

	errs := make(chan error, 2)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-sub.Recv():
				msg := EventMessage{
					Op:        EventOp,
					Kind:      ev.Kind.String(),
					RoundType: ev.RoundType,
				}
				if ev.Result != nil {
					msg.Outcome = ev.Result.Outcome.String()
					msg.Winners = ev.Result.Winners
				}
				bytes, err := cbor.Marshal(msg)
				if err != nil {
					continue
				}
				if err := writeTimeout(ctx, 5*time.Second, c, bytes); err != nil {
					errs <- err
					return
				}
			}
		}
	}()

	go func() {
		for {
			typ, message, err := c.Read(ctx)
			if err != nil {
				errs <- err
				return
			}
			if typ != websocket.MessageBinary {
				continue
			}

			var damage DamageMessage
			if err := cbor.Unmarshal(message, &damage); err != nil || damage.Op != DamageOp {
				log.Warn().Msg("dropping malformed damage frame")
				continue
			}
			g.damage.Deliver(round.Report{
				VictimID:   damage.Victim,
				AttackerID: damage.Attacker,
				Amount:     damage.Amount,
				Source:     damage.Source,
			})
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errs:
		return err
	}
}
