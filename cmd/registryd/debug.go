package main

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/feckmell/instanceregistry/regerr"
	"github.com/feckmell/instanceregistry/registry"
)

// debugServer exposes a read-only view of the registry core for operator
// tooling and for peer regions running adapters/httpremote against this
// process. It is not the client-facing registration/discovery protocol,
// which is out of scope for this repository.
type debugServer struct {
	reg *registry.Registry
}

func registerDebugRoutes(e *echo.Echo, reg *registry.Registry) {
	s := &debugServer{reg: reg}
	g := e.Group("/debug")
	g.GET("/apps", s.getApplications)
	g.GET("/apps/:appName", s.getApplication)
	g.GET("/delta", s.getDelta)
	g.GET("/instances/:id", s.getInstancesByID)
	g.GET("/activity/registered", s.getRecentlyRegistered)
	g.GET("/activity/cancelled", s.getRecentlyCancelled)
	g.GET("/self-preservation", s.getSelfPreservation)
}

func (s *debugServer) getApplications(c echo.Context) error {
	regions := splitCSV(c.QueryParam("regions"))
	return c.JSON(http.StatusOK, s.reg.GetApplicationsFromMultipleRegions(regions))
}

func (s *debugServer) getApplication(c echo.Context) error {
	appName := c.Param("appName")
	includeRemote := c.QueryParam("includeRemote") != "false"
	app := s.reg.GetApplication(appName, includeRemote)
	if app == nil {
		return regerr.NewEntityNotFoundError("no such application: "+appName, nil)
	}
	return c.JSON(http.StatusOK, app)
}

func (s *debugServer) getDelta(c echo.Context) error {
	regions := splitCSV(c.QueryParam("regions"))
	return c.JSON(http.StatusOK, s.reg.GetApplicationDeltasFromMultipleRegions(regions))
}

func (s *debugServer) getInstancesByID(c echo.Context) error {
	id := c.Param("id")
	instances := s.reg.GetInstancesById(id, true)
	if len(instances) == 0 {
		return regerr.NewEntityNotFoundError("no instance with id: "+id, nil)
	}
	return c.JSON(http.StatusOK, instances)
}

func (s *debugServer) getRecentlyRegistered(c echo.Context) error {
	return c.JSON(http.StatusOK, s.reg.RecentlyRegistered())
}

func (s *debugServer) getRecentlyCancelled(c echo.Context) error {
	return c.JSON(http.StatusOK, s.reg.RecentlyCancelled())
}

func (s *debugServer) getSelfPreservation(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int64{
		"renewsLastMin": s.reg.RenewsLastMin(),
	})
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
