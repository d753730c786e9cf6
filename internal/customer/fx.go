package customer

import (
	"github.com/smallbiznis/bizledger/internal/customer/domain"
	"github.com/smallbiznis/bizledger/internal/customer/repository"
	"github.com/smallbiznis/bizledger/internal/customer/service"
	paymentdomain "github.com/smallbiznis/bizledger/internal/payment/domain"
	"go.uber.org/fx"
)

func asPaidTrigger(svc domain.Service) paymentdomain.PaidTrigger {
	return svc
}

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(asPaidTrigger),
)
