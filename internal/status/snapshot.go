// internal/status/snapshot.go
package status

// Block represents exactly what the writer is allowed to deliver for one mote.
// It contains no logic and no memory of the past beyond current state.
type Block struct {
	Health             uint16
	Address            uint16
	State              uint16
	QueueDepth         uint16
	TxInterval         uint16
	Security           uint16
	SecondsSinceUpdate uint16
}
