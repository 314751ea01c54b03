package provision

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/mausamcrm/platform/internal/config"
	provisionaws "github.com/mausamcrm/platform/internal/provision/aws"
	"github.com/mausamcrm/platform/internal/provision/domain"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("provision.saga",
	fx.Provide(func() prometheus.Registerer { return prometheus.DefaultRegisterer }),
	fx.Provide(NewMetrics),
	fx.Provide(func(cfg config.Config) (awsv2.Config, error) {
		return provisionaws.LoadConfig(context.Background(), cfg)
	}),
	fx.Provide(fx.Annotate(provisionaws.NewComputeProvisioner, fx.As(new(domain.ComputeProvisioner)))),
	fx.Provide(fx.Annotate(provisionaws.NewRoutingConfigurator, fx.As(new(domain.RoutingConfigurator)))),
	fx.Provide(fx.Annotate(provisionaws.NewDNSManager, fx.As(new(domain.DNSManager)))),
	fx.Provide(fx.Annotate(provisionaws.NewTableProvisioner, fx.As(new(domain.TableProvisioner)))),
	fx.Provide(NewSaga),
)
