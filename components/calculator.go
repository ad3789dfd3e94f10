package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zyan/domain"
	"zyan/errors"
	"zyan/invoker"
)

const CalculatorInterface = "ICalculator"

// Calculator is activated per call.
type Calculator struct {
	log *slog.Logger
}

func NewCalculatorFactory(log *slog.Logger) domain.Factory {
	return func() (domain.Component, error) {
		return &Calculator{log: log}, nil
	}
}

func (c *Calculator) Describe() domain.Descriptor {
	pair := []domain.ParamDef{domain.Param("a", domain.TypeFloat64), domain.Param("b", domain.TypeFloat64)}
	return domain.Descriptor{
		Methods: []domain.Method{
			{Name: "Add", Params: pair, Returns: domain.TypeFloat64, Fn: invoker.Func2(c.add)},
			{Name: "Divide", Params: pair, Returns: domain.TypeFloat64, Fn: invoker.Func2(c.divide)},
			{
				Name:   "Audit",
				Params: []domain.ParamDef{domain.Param("message", domain.TypeString)},
				OneWay: true,
				Fn:     invoker.Action1(c.audit),
			},
		},
	}
}

func (c *Calculator) add(_ context.Context, a, b float64) (float64, error) {
	return a + b, nil
}

func (c *Calculator) divide(_ context.Context, a, b float64) (float64, error) {
	if b == 0 {
		return 0, fmt.Errorf("%w: division by zero", errors.ErrInvalidArgument)
	}
	return a / b, nil
}

func (c *Calculator) audit(_ context.Context, message string) error {
	c.log.Info("Audit", "message", message, "at", time.Now().UTC())
	return nil
}
