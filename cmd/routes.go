package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"subliBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("user"))
	listerAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleLister))
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleAdmin))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/logout", authMiddleware.ThenFunc(app.userHandler.LogOut))
	mux.Get("/user/me", authMiddleware.ThenFunc(app.userHandler.GetMe))
	mux.Post("/user/request_reset", standardMiddleware.ThenFunc(app.userHandler.RequestPasswordReset))
	mux.Post("/user/verify_reset_code", standardMiddleware.ThenFunc(app.userHandler.VerifyResetCode))
	mux.Post("/user/reset_password", standardMiddleware.ThenFunc(app.userHandler.ResetPassword))

	// Public listings
	mux.Get("/listings", standardMiddleware.ThenFunc(app.listingHandler.GetPublicListings))
	mux.Get("/listings/:id", standardMiddleware.ThenFunc(app.listingHandler.GetListingByID))
	mux.Post("/listings/:id/inquiries", standardMiddleware.ThenFunc(app.inquiryHandler.CreateInquiry))

	// Lister self-service
	mux.Post("/listings", listerAuthMiddleware.ThenFunc(app.listingHandler.CreateListing))
	mux.Put("/listings/:id", listerAuthMiddleware.ThenFunc(app.listingHandler.UpdateListing))
	mux.Del("/listings/:id", listerAuthMiddleware.ThenFunc(app.listingHandler.DeleteListing))
	mux.Post("/listings/:id/resubmit", listerAuthMiddleware.ThenFunc(app.listingHandler.Resubmit))
	mux.Get("/my/listings", listerAuthMiddleware.ThenFunc(app.listingHandler.GetMyListings))
	mux.Get("/my/inquiries", listerAuthMiddleware.ThenFunc(app.inquiryHandler.GetMyInquiries))

	// Leads
	mux.Post("/leads", standardMiddleware.ThenFunc(app.leadHandler.CreateLead))

	// Payments
	mux.Post("/payments/checkout", listerAuthMiddleware.ThenFunc(app.paymentHandler.CreateCheckout))
	mux.Post("/stripe/webhook", standardMiddleware.ThenFunc(app.paymentHandler.HandleWebhook))

	// Admin
	mux.Get("/admin/listings", adminAuthMiddleware.ThenFunc(app.listingHandler.GetAllListings))
	mux.Put("/admin/listings/:id/approve", adminAuthMiddleware.ThenFunc(app.listingHandler.Approve))
	mux.Put("/admin/listings/:id/reject", adminAuthMiddleware.ThenFunc(app.listingHandler.Reject))
	mux.Put("/admin/listings/:id/request_changes", adminAuthMiddleware.ThenFunc(app.listingHandler.RequestChanges))
	mux.Put("/admin/listings/:id", adminAuthMiddleware.ThenFunc(app.listingHandler.AdminUpdateListing))
	mux.Del("/admin/listings/:id", adminAuthMiddleware.ThenFunc(app.listingHandler.DeleteListing))
	mux.Get("/admin/inquiries", adminAuthMiddleware.ThenFunc(app.inquiryHandler.GetAllInquiries))
	mux.Del("/admin/inquiries/:id", adminAuthMiddleware.ThenFunc(app.inquiryHandler.DeleteInquiry))
	mux.Get("/admin/leads", adminAuthMiddleware.ThenFunc(app.leadHandler.GetAllLeads))
	mux.Del("/admin/leads/:id", adminAuthMiddleware.ThenFunc(app.leadHandler.DeleteLead))
	mux.Get("/admin/users", adminAuthMiddleware.ThenFunc(app.userHandler.GetAllUsers))
	mux.Put("/admin/users/:id/role", adminAuthMiddleware.ThenFunc(app.userHandler.UpdateRole))

	return standardMiddleware.Then(mux)
}
