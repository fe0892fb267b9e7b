package customer

import "github.com/gofiber/fiber/v2"

const localsKey = "customer"

// SetCurrent attaches the authenticated customer to the request.
func SetCurrent(c *fiber.Ctx, cust Customer) {
	c.Locals(localsKey, cust)
}

// Current returns the authenticated customer of the request, if any.
func Current(c *fiber.Ctx) (Customer, bool) {
	cust, ok := c.Locals(localsKey).(Customer)
	return cust, ok && cust.ID != ""
}
