package components

import (
	"log/slog"

	"zyan/dispatch"
	"zyan/domain"
)

// Register publishes the sample components on d. The clock and the board
// are shared instances; the caller drives the clock.
func Register(d *dispatch.Dispatcher, log *slog.Logger, clock *Clock) error {
	board := NewBoard(log)
	if err := d.RegisterComponent(ClockInterface, func() (domain.Component, error) { return clock, nil }, domain.Singleton); err != nil {
		return err
	}
	if err := d.RegisterComponent(BoardInterface, func() (domain.Component, error) { return board, nil }, domain.Singleton); err != nil {
		return err
	}
	return d.RegisterComponent(CalculatorInterface, NewCalculatorFactory(log), domain.SingleCall)
}
