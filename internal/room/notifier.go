package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// rpcAddProductToShow is the method the broadcaster client registers to push
// a product into the live carousel.
const rpcAddProductToShow = "addProductToShow"

// rpcResponseTimeout bounds how long a voice turn waits on the broadcaster.
// No retry on failure: a fast, bounded spoken reply beats silent retries.
const rpcResponseTimeout = 10 * time.Second

// RPCTimeoutError reports that the peer did not respond within the timeout.
type RPCTimeoutError struct {
	Method      string
	Destination string
}

func (e *RPCTimeoutError) Error() string {
	return fmt.Sprintf("rpc %s to %s timed out after %s", e.Method, e.Destination, rpcResponseTimeout)
}

// RPCDeliveryError reports that the peer was unreachable or rejected the call.
type RPCDeliveryError struct {
	Method      string
	Destination string
	Err         error
}

func (e *RPCDeliveryError) Error() string {
	return fmt.Sprintf("rpc %s to %s failed: %v", e.Method, e.Destination, e.Err)
}

func (e *RPCDeliveryError) Unwrap() error { return e.Err }

// Notifier pushes newly created products to the broadcaster's client.
type Notifier struct {
	session Session
}

// NewNotifier wraps a room session for carousel notifications.
func NewNotifier(s Session) *Notifier {
	return &Notifier{session: s}
}

type addProductPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
}

// NotifyProductAdded performs the addProductToShow RPC against the
// broadcaster and returns the peer's response payload. At most one attempt.
func (n *Notifier) NotifyProductAdded(ctx context.Context, broadcasterIdentity, productID, productName string) (string, error) {
	payload, err := json.Marshal(addProductPayload{ProductID: productID, Name: productName})
	if err != nil {
		return "", fmt.Errorf("marshal rpc payload: %w", err)
	}

	resp, err := n.session.PerformRPC(ctx, broadcasterIdentity, rpcAddProductToShow, string(payload), rpcResponseTimeout)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &RPCTimeoutError{Method: rpcAddProductToShow, Destination: broadcasterIdentity}
		}
		return "", &RPCDeliveryError{Method: rpcAddProductToShow, Destination: broadcasterIdentity, Err: err}
	}
	return resp, nil
}
