package application

// Service 招聘上下文应用服务门面
type Service struct {
	Catalog          *CatalogService
	Applications     *ApplicationCommandService
	ApplicationQuery *ApplicationQueryService
	Interviews       *InterviewCommandService
	InterviewQuery   *InterviewQueryService
	Reports          *ReportQueryService
}

// NewService 按依赖组装全部服务，共用同一套流转逻辑
func NewService(deps Deps) *Service {
	w := newWorkflow(deps)
	return &Service{
		Catalog:          newCatalogService(w),
		Applications:     newApplicationCommandService(w),
		ApplicationQuery: newApplicationQueryService(w),
		Interviews:       newInterviewCommandService(w),
		InterviewQuery:   newInterviewQueryService(w),
		Reports:          newReportQueryService(w),
	}
}
