package payment

import (
	paymentdomain "github.com/recvlabs/recv/internal/payment/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.payment",
	fx.Provide(NewClient),
	fx.Provide(func(c *Client) paymentdomain.Verifier { return c }),
)
