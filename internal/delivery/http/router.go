package http

import (
	"net/http"

	"clinic-backend/internal/delivery/http/handler"
	"clinic-backend/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	userHandler        *handler.UserHandler
	appointmentHandler *handler.AppointmentHandler
	reportHandler      *handler.ReportHandler
	complaintHandler   *handler.ComplaintHandler
	paymentHandler     *handler.PaymentHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	timeoutMiddleware  *middleware.TimeoutMiddleware
	authLimiter        *middleware.RateLimiter
	patientLimiter     *middleware.RateLimiter
	generalLimiter     *middleware.RateLimiter
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	appointmentHandler *handler.AppointmentHandler,
	reportHandler *handler.ReportHandler,
	complaintHandler *handler.ComplaintHandler,
	paymentHandler *handler.PaymentHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	timeoutMiddleware *middleware.TimeoutMiddleware,
	authLimiter *middleware.RateLimiter,
	patientLimiter *middleware.RateLimiter,
	generalLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		userHandler:        userHandler,
		appointmentHandler: appointmentHandler,
		reportHandler:      reportHandler,
		complaintHandler:   complaintHandler,
		paymentHandler:     paymentHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		timeoutMiddleware:  timeoutMiddleware,
		authLimiter:        authLimiter,
		patientLimiter:     patientLimiter,
		generalLimiter:     generalLimiter,
	}
}

func (r *Router) Setup() *mux.Router {
	api := r.router.PathPrefix("/api").Subrouter()
	api.Use(r.timeoutMiddleware.Handle)

	// Health check: exempt from rate limiting and auditing.
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public, tight rate budget)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(r.authLimiter.Handle)
	auth.Use(middleware.Scrub)
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.generalLimiter.Handle)
	authProtected.Use(middleware.Scrub)
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.Me).Methods(http.MethodGet)
	authProtected.HandleFunc("/update-profile", r.authHandler.UpdateProfile).Methods(http.MethodPatch)
	authProtected.HandleFunc("/change-password", r.authHandler.ChangePassword).Methods(http.MethodPatch)

	// User management (super-admin only), mounted under the auth surface.
	users := api.PathPrefix("/auth/users").Subrouter()
	users.Use(r.generalLimiter.Handle)
	users.Use(middleware.Scrub)
	users.Use(r.authMiddleware.Authenticate)
	users.Use(middleware.RequireSuperAdmin)
	users.HandleFunc("", r.userHandler.ListUsers).Methods(http.MethodGet)
	users.HandleFunc("", r.userHandler.CreateUser).Methods(http.MethodPost)
	users.HandleFunc("/{id}/status", r.userHandler.SetUserStatus).Methods(http.MethodPatch)
	users.HandleFunc("/{id}", r.userHandler.DeleteUser).Methods(http.MethodDelete)

	// Appointments
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(middleware.Scrub)
	appointments.Use(r.authMiddleware.Authenticate)

	patientAppointments := appointments.NewRoute().Subrouter()
	patientAppointments.Use(r.patientLimiter.Handle)
	patientAppointments.Use(middleware.RequirePatient)
	patientAppointments.HandleFunc("", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	patientAppointments.HandleFunc("/my", r.appointmentHandler.ListMyAppointments).Methods(http.MethodGet)
	patientAppointments.HandleFunc("/{id}/home-collection", r.appointmentHandler.RequestHomeCollection).Methods(http.MethodPost)

	staffAppointments := appointments.NewRoute().Subrouter()
	staffAppointments.Use(r.generalLimiter.Handle)
	staffAppointments.Use(middleware.RequireStaff)
	staffAppointments.HandleFunc("", r.appointmentHandler.ListAppointments).Methods(http.MethodGet)
	staffAppointments.HandleFunc("/{id}/approve", r.appointmentHandler.ApproveAppointment).Methods(http.MethodPut)
	staffAppointments.HandleFunc("/{id}/reject", r.appointmentHandler.RejectAppointment).Methods(http.MethodPut)
	staffAppointments.HandleFunc("/{id}/status", r.appointmentHandler.SetAppointmentStatus).Methods(http.MethodPut)
	staffAppointments.HandleFunc("/{id}/home-collection/approve", r.appointmentHandler.ApproveHomeCollection).Methods(http.MethodPut)
	staffAppointments.HandleFunc("/{id}/results", r.appointmentHandler.AddTestResults).Methods(http.MethodPost)

	sharedAppointments := appointments.NewRoute().Subrouter()
	sharedAppointments.Use(r.generalLimiter.Handle)
	sharedAppointments.HandleFunc("/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	sharedAppointments.HandleFunc("/{id}", r.appointmentHandler.UpdateAppointment).Methods(http.MethodPut)
	sharedAppointments.HandleFunc("/{id}", r.appointmentHandler.DeleteAppointment).Methods(http.MethodDelete)

	// Reports
	reports := api.PathPrefix("/reports").Subrouter()
	reports.Use(middleware.Scrub)
	reports.Use(r.authMiddleware.Authenticate)

	staffReports := reports.NewRoute().Subrouter()
	staffReports.Use(r.generalLimiter.Handle)
	staffReports.Use(middleware.RequireStaff)
	staffReports.HandleFunc("", r.reportHandler.CreateReport).Methods(http.MethodPost)
	staffReports.HandleFunc("", r.reportHandler.ListReports).Methods(http.MethodGet)
	staffReports.HandleFunc("/{id}", r.reportHandler.UpdateReport).Methods(http.MethodPut)
	staffReports.HandleFunc("/{id}", r.reportHandler.DeleteReport).Methods(http.MethodDelete)
	staffReports.HandleFunc("/{id}/status", r.reportHandler.SetReportStatus).Methods(http.MethodPut)

	patientReports := reports.NewRoute().Subrouter()
	patientReports.Use(r.patientLimiter.Handle)
	patientReports.Use(middleware.RequirePatient)
	patientReports.HandleFunc("/my", r.reportHandler.ListMyReports).Methods(http.MethodGet)

	sharedReports := reports.NewRoute().Subrouter()
	sharedReports.Use(r.generalLimiter.Handle)
	sharedReports.HandleFunc("/{id}", r.reportHandler.GetReport).Methods(http.MethodGet)
	sharedReports.HandleFunc("/{id}/download", r.reportHandler.DownloadReport).Methods(http.MethodGet)

	// Complaints
	complaints := api.PathPrefix("/complaints").Subrouter()
	complaints.Use(middleware.Scrub)
	complaints.Use(r.authMiddleware.Authenticate)

	patientComplaints := complaints.NewRoute().Subrouter()
	patientComplaints.Use(r.patientLimiter.Handle)
	patientComplaints.Use(middleware.RequirePatient)
	patientComplaints.HandleFunc("", r.complaintHandler.CreateComplaint).Methods(http.MethodPost)
	patientComplaints.HandleFunc("/my", r.complaintHandler.ListMyComplaints).Methods(http.MethodGet)

	staffComplaints := complaints.NewRoute().Subrouter()
	staffComplaints.Use(r.generalLimiter.Handle)
	staffComplaints.Use(middleware.RequireStaff)
	staffComplaints.HandleFunc("", r.complaintHandler.ListComplaints).Methods(http.MethodGet)
	staffComplaints.HandleFunc("/overdue", r.complaintHandler.ListOverdueComplaints).Methods(http.MethodGet)
	staffComplaints.HandleFunc("/stats/summary", r.complaintHandler.ComplaintStats).Methods(http.MethodGet)
	staffComplaints.HandleFunc("/{id}/assign", r.complaintHandler.AssignComplaint).Methods(http.MethodPut)
	staffComplaints.HandleFunc("/{id}/resolve", r.complaintHandler.ResolveComplaint).Methods(http.MethodPut)
	staffComplaints.HandleFunc("/{id}/priority", r.complaintHandler.SetComplaintPriority).Methods(http.MethodPut)
	staffComplaints.HandleFunc("/{id}/escalate", r.complaintHandler.EscalateComplaint).Methods(http.MethodPut)

	sharedComplaints := complaints.NewRoute().Subrouter()
	sharedComplaints.Use(r.generalLimiter.Handle)
	sharedComplaints.HandleFunc("/{id}", r.complaintHandler.GetComplaint).Methods(http.MethodGet)
	sharedComplaints.HandleFunc("/{id}", r.complaintHandler.UpdateComplaint).Methods(http.MethodPut)
	sharedComplaints.HandleFunc("/{id}", r.complaintHandler.DeleteComplaint).Methods(http.MethodDelete)
	sharedComplaints.HandleFunc("/{id}/comments", r.complaintHandler.AddComplaintComment).Methods(http.MethodPost)

	// Payments
	payments := api.PathPrefix("/payments").Subrouter()
	payments.Use(middleware.Scrub)
	payments.Use(r.authMiddleware.Authenticate)

	staffPayments := payments.NewRoute().Subrouter()
	staffPayments.Use(r.generalLimiter.Handle)
	staffPayments.Use(middleware.RequireStaff)
	staffPayments.HandleFunc("", r.paymentHandler.CreatePayment).Methods(http.MethodPost)
	staffPayments.HandleFunc("", r.paymentHandler.ListPayments).Methods(http.MethodGet)
	staffPayments.HandleFunc("/stats/summary", r.paymentHandler.PaymentStats).Methods(http.MethodGet)
	staffPayments.HandleFunc("/{id}", r.paymentHandler.UpdatePayment).Methods(http.MethodPut)
	staffPayments.HandleFunc("/{id}", r.paymentHandler.DeletePayment).Methods(http.MethodDelete)
	staffPayments.HandleFunc("/{id}/status", r.paymentHandler.SetPaymentStatus).Methods(http.MethodPut)
	staffPayments.HandleFunc("/{id}/refund", r.paymentHandler.RefundPayment).Methods(http.MethodPost)

	patientPayments := payments.NewRoute().Subrouter()
	patientPayments.Use(r.patientLimiter.Handle)
	patientPayments.Use(middleware.RequirePatient)
	patientPayments.HandleFunc("/my", r.paymentHandler.ListMyPayments).Methods(http.MethodGet)

	sharedPayments := payments.NewRoute().Subrouter()
	sharedPayments.Use(r.generalLimiter.Handle)
	sharedPayments.HandleFunc("/{id}", r.paymentHandler.GetPayment).Methods(http.MethodGet)

	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Clinic backend is running", "status": "OK"}`))
}
