package engine

import "context"

// Random is the source of dice, market noise and AI picks. *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
	Float64() float64
}

// ChanceOracle supplies chance events
type ChanceOracle interface {
	Draw(ctx context.Context) (ChanceEvent, error)
}

// Narrator produces flavor commentary for notable events
type Narrator interface {
	Narrate(ctx context.Context, player string, tag EventTag, summary string) (string, error)
}

// EventTag names the event a commentary line is requested for
type EventTag string

const (
	TagBuy      EventTag = "Player Bought Property"
	TagRent     EventTag = "High Rent Payment"
	TagJail     EventTag = "Arrested and sent to Jail"
	TagBankrupt EventTag = "Bankrupt"
	TagHospital EventTag = "Admitted to Hospital"
)

// FallbackChance is applied when the oracle fails or times out
var FallbackChance = ChanceEvent{
	Description: "The chance terminal is offline. Nothing happens.",
	EffectType:  EffectMoney,
	Value:       0,
}

// FallbackCommentary is used when the narrator fails or returns nothing
const FallbackCommentary = "The game goes on."

type silentOracle struct{}

func (silentOracle) Draw(context.Context) (ChanceEvent, error) {
	return FallbackChance, nil
}

type silentNarrator struct{}

func (silentNarrator) Narrate(context.Context, string, EventTag, string) (string, error) {
	return FallbackCommentary, nil
}
