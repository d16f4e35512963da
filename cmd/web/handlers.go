package main

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"

	rentalweb "github.com/skyfleet/rentals-web"
	"github.com/skyfleet/rentals-web/client"
)

// apiFor returns a client bound to the request's session cookie so every
// backend call carries the caller's own bearer token.
func (app *webApp) apiFor(ctx router.Context) *client.Client {
	return client.New(client.Config{
		BaseURL: app.cfg.BackendURL,
		Timeout: app.cfg.RequestTimeout,
		Logger:  app.logger.named("client"),
		Tokens: func() (string, bool) {
			token := ctx.Cookies(rentalweb.DefaultTokenCookie)
			return token, token != ""
		},
	})
}

func (app *webApp) render(ctx router.Context, name string, data router.ViewContext) error {
	merged := router.ViewContext{}
	for k, v := range rentalweb.TemplateHelpersWithRouter(ctx, rentalweb.TemplateUserKey) {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	return ctx.Render(name, merged)
}

func (app *webApp) HomeShow(ctx router.Context) error {
	drones, err := app.api.Drones.ListByStatus(ctx.Context(), client.DroneAvailable)
	if err != nil {
		app.logger.Error("home: catalog unavailable: %v", err)
		drones = nil
	}

	return app.render(ctx, "home", router.ViewContext{
		"drones": drones,
	})
}

func (app *webApp) DronesShow(ctx router.Context) error {
	opts := client.SearchOptions{
		Query:    ctx.Query("q"),
		Location: ctx.Query("location"),
	}
	if raw := ctx.Query("max_price"); raw != "" {
		if price, err := strconv.ParseFloat(raw, 64); err == nil {
			opts.MaxPrice = price
		}
	}

	var drones []client.Drone
	var err error
	if opts.Query != "" || opts.Location != "" || opts.MaxPrice > 0 {
		drones, err = app.api.Drones.Search(ctx.Context(), opts)
	} else {
		drones, err = app.api.Drones.List(ctx.Context())
	}
	if err != nil {
		return app.render(ctx, "drones/index", router.ViewContext{
			"errors": map[string]string{"catalog": "Catalog is unavailable right now"},
		})
	}

	return app.render(ctx, "drones/index", router.ViewContext{
		"drones": drones,
		"search": opts,
	})
}

func (app *webApp) DroneShow(ctx router.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.Status(router.StatusBadRequest).Render("errors/404", router.ViewContext{})
	}

	drone, err := app.api.Drones.Get(ctx.Context(), id)
	if err != nil {
		return ctx.Status(router.StatusNotFound).Render("errors/404", router.ViewContext{})
	}

	ratings, err := app.api.Drones.Ratings(ctx.Context(), id)
	if err != nil {
		app.logger.Debug("drone %d: ratings unavailable: %v", id, err)
	}

	return app.render(ctx, "drones/show", router.ViewContext{
		"drone":   drone,
		"ratings": ratings,
	})
}

func (app *webApp) ProfileShow(ctx router.Context) error {
	session, ok := rentalweb.SessionFromContext(ctx.Context())
	if !ok || !session.Authenticated() {
		return ctx.Redirect("/login", router.StatusSeeOther)
	}

	return app.render(ctx, "profile/show", router.ViewContext{
		"identity": session.Identity,
	})
}

func (app *webApp) ProfileUpdate(ctx router.Context) error {
	payload := struct {
		Name    string `form:"name" json:"name"`
		Email   string `form:"email" json:"email"`
		Phone   string `form:"phone" json:"phone"`
		Address string `form:"address" json:"address"`
	}{}

	if err := ctx.Bind(&payload); err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Could not read the form",
		}).Redirect("/profile", router.StatusSeeOther)
	}

	patch := rentalweb.IdentityPatch{}
	if payload.Name != "" {
		patch.DisplayName = &payload.Name
	}
	if payload.Email != "" {
		patch.Email = &payload.Email
	}
	if payload.Phone != "" {
		patch.Phone = &payload.Phone
	}
	if payload.Address != "" {
		patch.Address = &payload.Address
	}

	if _, err := app.apiFor(ctx).Users.UpdateProfile(ctx.Context(), patch); err != nil {
		app.logger.Error("profile update rejected: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Profile update failed",
		}).Redirect("/profile", router.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Profile updated",
	}).Redirect("/profile", router.StatusSeeOther)
}

func (app *webApp) BookingsShow(ctx router.Context) error {
	session, ok := rentalweb.SessionFromContext(ctx.Context())
	if !ok || !session.Authenticated() {
		return ctx.Redirect("/login", router.StatusSeeOther)
	}

	customerID, err := strconv.ParseInt(session.Identity.ID, 10, 64)
	if err != nil {
		app.logger.Error("bookings: session identity id %q is not numeric: %v", session.Identity.ID, err)
		return app.render(ctx, "bookings/index", router.ViewContext{
			"errors": map[string]string{"bookings": "Bookings are unavailable right now"},
		})
	}

	bookings, err := app.apiFor(ctx).Bookings.ListByCustomer(ctx.Context(), customerID)
	if err != nil {
		app.logger.Error("bookings list failed: %v", err)
		return app.render(ctx, "bookings/index", router.ViewContext{
			"errors": map[string]string{"bookings": "Bookings are unavailable right now"},
		})
	}

	return app.render(ctx, "bookings/index", router.ViewContext{
		"bookings": bookings,
	})
}

func (app *webApp) BookingShow(ctx router.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.Status(router.StatusBadRequest).Render("errors/404", router.ViewContext{})
	}

	api := app.apiFor(ctx)

	booking, err := api.Bookings.Get(ctx.Context(), id)
	if err != nil {
		return ctx.Status(router.StatusNotFound).Render("errors/404", router.ViewContext{})
	}

	payments, err := api.Bookings.Payments(ctx.Context(), id)
	if err != nil {
		app.logger.Debug("booking %d: payments unavailable: %v", id, err)
	}

	undertakings, err := api.Bookings.Undertakings(ctx.Context(), id)
	if err != nil {
		app.logger.Debug("booking %d: undertakings unavailable: %v", id, err)
	}

	return app.render(ctx, "bookings/show", router.ViewContext{
		"booking":      booking,
		"payments":     payments,
		"undertakings": undertakings,
	})
}

func (app *webApp) BookingCreate(ctx router.Context) error {
	payload := struct {
		DroneID   int64  `form:"drone_id" json:"drone_id"`
		StartTime string `form:"start_time" json:"start_time"`
		EndTime   string `form:"end_time" json:"end_time"`
	}{}

	if err := ctx.Bind(&payload); err != nil || payload.DroneID == 0 {
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Could not read the booking form",
		}).Redirect("/drones", router.StatusSeeOther)
	}

	booking, err := app.apiFor(ctx).Bookings.Create(ctx.Context(), client.BookingRequest{
		DroneID:   payload.DroneID,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
	})
	if err != nil {
		app.logger.Error("booking create rejected: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "The drone could not be booked for that period",
		}).Redirect(fmt.Sprintf("/drones/%d", payload.DroneID), router.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Booking created, accept the undertaking to continue",
	}).Redirect(fmt.Sprintf("/bookings/%d", booking.ID), router.StatusSeeOther)
}

func (app *webApp) BookingCancel(ctx router.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.Status(router.StatusBadRequest).Render("errors/404", router.ViewContext{})
	}

	if err := app.apiFor(ctx).Bookings.Cancel(ctx.Context(), id); err != nil {
		app.logger.Error("booking %d cancel failed: %v", id, err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "The booking could not be cancelled",
		}).Redirect(fmt.Sprintf("/bookings/%d", id), router.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Booking cancelled",
	}).Redirect("/bookings", router.StatusSeeOther)
}

func (app *webApp) UndertakingAccept(ctx router.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.Status(router.StatusBadRequest).Render("errors/404", router.ViewContext{})
	}

	if _, err := app.apiFor(ctx).Undertakings.Accept(ctx.Context(), id); err != nil {
		app.logger.Error("undertaking %d accept failed: %v", id, err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "The undertaking could not be accepted",
		}).Redirect("/bookings", router.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Undertaking accepted",
	}).Redirect("/bookings", router.StatusSeeOther)
}

// PaymentStart creates a checkout order for the booking and renders the
// payment page the checkout widget mounts on.
func (app *webApp) PaymentStart(ctx router.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.Status(router.StatusBadRequest).Render("errors/404", router.ViewContext{})
	}

	order, err := app.apiFor(ctx).Payments.CreateOrder(ctx.Context(), id)
	if err != nil {
		app.logger.Error("booking %d: checkout order failed: %v", id, err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Payment could not be started",
		}).Redirect(fmt.Sprintf("/bookings/%d", id), router.StatusSeeOther)
	}

	return app.render(ctx, "payments/checkout", router.ViewContext{
		"booking_id": id,
		"order":      order,
	})
}

func (app *webApp) PaymentVerify(ctx router.Context) error {
	proof := client.PaymentVerification{}
	if err := ctx.Bind(&proof); err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Could not read the payment confirmation",
		}).Redirect("/bookings", router.StatusSeeOther)
	}

	payment, err := app.apiFor(ctx).Payments.Verify(ctx.Context(), proof)
	if err != nil {
		app.logger.Error("payment verification failed: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Payment could not be verified",
		}).Redirect(fmt.Sprintf("/bookings/%d", proof.BookingID), router.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Payment received",
	}).Redirect(fmt.Sprintf("/bookings/%d", payment.BookingID), router.StatusSeeOther)
}

func (app *webApp) RatingCreate(ctx router.Context) error {
	droneID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.Status(router.StatusBadRequest).Render("errors/404", router.ViewContext{})
	}

	payload := struct {
		Rating  int    `form:"rating" json:"rating"`
		Comment string `form:"comment" json:"comment"`
	}{}

	if err := ctx.Bind(&payload); err != nil || payload.Rating < 1 || payload.Rating > 5 {
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Rating must be between 1 and 5",
		}).Redirect(fmt.Sprintf("/drones/%d", droneID), router.StatusSeeOther)
	}

	if _, err := app.apiFor(ctx).Ratings.Create(ctx.Context(), client.RatingRequest{
		DroneID: droneID,
		Rating:  payload.Rating,
		Comment: payload.Comment,
	}); err != nil {
		app.logger.Error("rating for drone %d rejected: %v", droneID, err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Your rating could not be saved",
		}).Redirect(fmt.Sprintf("/drones/%d", droneID), router.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Thanks for rating",
	}).Redirect(fmt.Sprintf("/drones/%d", droneID), router.StatusSeeOther)
}

func (app *webApp) PenaltiesShow(ctx router.Context) error {
	penalties, err := app.apiFor(ctx).Penalties.List(ctx.Context())
	if err != nil {
		app.logger.Error("penalties list failed: %v", err)
		penalties = nil
	}

	return app.render(ctx, "penalties/index", router.ViewContext{
		"penalties": penalties,
	})
}

func (app *webApp) AdminDashboardShow(ctx router.Context) error {
	stats, err := app.apiFor(ctx).Admin.Dashboard(ctx.Context())
	if err != nil {
		app.logger.Error("admin dashboard failed: %v", err)
		return app.render(ctx, "admin/dashboard", router.ViewContext{
			"errors": map[string]string{"dashboard": "Dashboard is unavailable right now"},
		})
	}

	return app.render(ctx, "admin/dashboard", router.ViewContext{
		"stats": stats,
	})
}

func (app *webApp) AdminBookingsShow(ctx router.Context) error {
	bookings, err := app.apiFor(ctx).Admin.Bookings(ctx.Context())
	if err != nil {
		app.logger.Error("admin bookings failed: %v", err)
		bookings = nil
	}

	return app.render(ctx, "admin/bookings", router.ViewContext{
		"bookings": bookings,
	})
}

func (app *webApp) AdminUsersShow(ctx router.Context) error {
	users, err := app.apiFor(ctx).Admin.Users(ctx.Context())
	if err != nil {
		app.logger.Error("admin users failed: %v", err)
		users = nil
	}

	return app.render(ctx, "admin/users", router.ViewContext{
		"users": users,
	})
}

func (app *webApp) AdminBookingStatusUpdate(ctx router.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.Status(router.StatusBadRequest).Render("errors/404", router.ViewContext{})
	}

	payload := struct {
		Status string `form:"status" json:"status"`
	}{}
	if err := ctx.Bind(&payload); err != nil || payload.Status == "" {
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Pick a status first",
		}).Redirect("/admin/bookings", router.StatusSeeOther)
	}

	if _, err := app.apiFor(ctx).Admin.SetBookingStatus(ctx.Context(), id, payload.Status); err != nil {
		app.logger.Error("admin booking %d status update failed: %v", id, err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "The booking status could not be changed",
		}).Redirect("/admin/bookings", router.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Booking status updated",
	}).Redirect("/admin/bookings", router.StatusSeeOther)
}

func (app *webApp) AdminPaymentsShow(ctx router.Context) error {
	api := app.apiFor(ctx)

	payments, err := api.Admin.Payments(ctx.Context())
	if err != nil {
		app.logger.Error("admin payments failed: %v", err)
		payments = nil
	}

	revenue, err := api.Admin.Revenue(ctx.Context())
	if err != nil {
		app.logger.Debug("admin revenue unavailable: %v", err)
	}

	return app.render(ctx, "admin/payments", router.ViewContext{
		"payments": payments,
		"revenue":  revenue,
	})
}

// PageShow serves the static marketing pages.
func (app *webApp) PageShow(name string) router.HandlerFunc {
	return func(ctx router.Context) error {
		return app.render(ctx, "pages/"+name, router.ViewContext{})
	}
}
