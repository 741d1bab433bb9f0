// internal/status/constants.go
package status

// Mote Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerMote is the fixed number of logical slots per mote.
const SlotsPerMote = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the mote health state.
const SlotHealthCode = 0

// SlotAddress holds the mirrored mote address.
const SlotAddress = 1

// SlotState holds the last reported system state.
const SlotState = 2

// SlotQueueDepth holds the number of commands waiting for a receive window.
const SlotQueueDepth = 3

// SlotTxInterval holds the mirrored periodic transmission interval.
const SlotTxInterval = 4

// SlotSecurity holds the mirrored security option.
const SlotSecurity = 5

// SlotSecondsSinceUpdate holds the age (in seconds) of the last observation.
const SlotSecondsSinceUpdate = 6

// ---- RESERVED RANGE ----

// Slots 7-10 are reserved for future use.
const SlotReservedStart = 7
const SlotReservedEnd = 10

// ---- MOTE NAME ----

// SlotNameStart is the first slot used for the mote name.
// The name is always placed at the END of the status block.
const SlotNameStart = 11

// SlotNameSlots is the number of slots reserved for the mote name.
const SlotNameSlots = 8

// SlotNameEnd is the last slot used for the mote name (inclusive).
const SlotNameEnd = SlotNameStart + SlotNameSlots - 1

// ---- LIMITS ----

// NameMaxChars is the maximum number of ASCII characters stored for the mote name.
const NameMaxChars = 16

// MaxSeconds is where seconds_since_update saturates.
const MaxSeconds = 65535

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a mote heard from within its stale window.
const HealthOK uint16 = 1

// HealthLowBattery represents a mote that reported LOWBAT.
const HealthLowBattery uint16 = 2

// HealthStale represents a mote silent for longer than its stale window.
const HealthStale uint16 = 3
