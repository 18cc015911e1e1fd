package server

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", s.handleHealth)
	api.HEAD("/health", s.handleHealth)
	api.GET("/version", s.handleVersion)

	api.POST("/analyze", s.handleAnalyze)
	api.POST("/charts/:kind", s.handleChart)
	api.GET("/charts", s.handleChartKinds)
}
