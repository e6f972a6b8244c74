package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every HTTP surface mounted on the application
// router: bookings, reports and health.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
