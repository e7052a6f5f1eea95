package router

import (
	"github.com/oksasatya/narrative-weaver/internal/application"
	"github.com/oksasatya/narrative-weaver/internal/container"
	handlers "github.com/oksasatya/narrative-weaver/internal/interface/http"
	"github.com/oksasatya/narrative-weaver/internal/router/modules"
)

// Services are the application services the HTTP modules call.
type Services struct {
	Users   *application.UserService
	Diary   *application.DiaryService
	Summary *application.SummaryService
	Export  *application.ExportService
}

func BuildServices(c *container.Container) Services {
	cfg := c.Config
	loc := cfg.DisplayLocation()
	notifier := application.NewNotifier(c.Publisher, c.Branding(), c.Logger)

	return Services{
		Users:   application.NewUserService(c.Users, c.Entries, c.Index, c.JWT, c.Redis, notifier, c.Logger),
		Diary:   application.NewDiaryService(c.Entries, c.Index, c.Images, c.Metrics, c.Logger),
		Summary: application.NewSummaryService(c.Entries, c.Users, c.Generator, cfg.GeneratorTimeout, loc, c.Metrics, c.Logger),
		Export:  application.NewExportService(c.Entries, loc, c.Metrics, c.Logger),
	}
}

// InitModules builds handlers over the container and adds every module to
// the registry. Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) Services {
	svc := BuildServices(c)
	guard := modules.Guard{JWT: c.JWT, Redis: c.Redis, Users: c.Users}

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, c.Logger), guard))
	r.Add(modules.NewDiaryModule(handlers.NewDiaryHandler(svc.Diary, c.Logger), guard))
	r.Add(modules.NewAIModule(handlers.NewAIHandler(svc.Summary, c.Logger), guard))
	r.Add(modules.NewExportModule(handlers.NewExportHandler(svc.Export, c.Logger), guard))
	r.AddRoot(modules.NewMetricsModule(c.Metrics, c.Redis))
	return svc
}
