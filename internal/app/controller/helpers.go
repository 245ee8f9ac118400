package controller

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
)

func init() {
	// Report validation failures under the JSON field names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindingFields lists the rule each field failed. A body that is not valid
// JSON at all is reported under "body".
func bindingFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return map[string]string{"body": "invalid JSON"}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// respondError maps service sentinels to client errors and relays anything
// else as a storefront API failure.
func respondError(c *gin.Context, err error, action string) {
	switch {
	case stderrors.Is(err, service.ErrNotAuthenticated):
		errors.Unauthorized(c, "")
	case stderrors.Is(err, service.ErrCustomerUnknown):
		errors.RespondWithError(c, http.StatusForbidden, errors.AuthCustomerUnknown, "This account has no customer profile")
	case stderrors.Is(err, service.ErrForbidden), stderrors.Is(err, service.ErrOrderNotOwned):
		errors.Forbidden(c, "")
	case stderrors.Is(err, service.ErrInvalidQuantity):
		errors.BadRequest(c, errors.ValidationInvalidQuantity, "Quantity must be greater than zero")
	case stderrors.Is(err, service.ErrInvalidProductID), stderrors.Is(err, service.ErrInvalidID):
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid id")
	case stderrors.Is(err, service.ErrMissingCredentials), stderrors.Is(err, service.ErrMissingShippingAddress):
		errors.BadRequest(c, errors.ValidationRequired, err.Error())
	case stderrors.Is(err, service.ErrInvalidResolution):
		errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
	case stderrors.Is(err, service.ErrMalformedCart), stderrors.Is(err, service.ErrNoTokenIssued):
		errors.RespondWithError(c, http.StatusBadGateway, errors.UpstreamMalformed, "The store returned an unreadable response")
	default:
		errors.RespondWithUpstreamError(c, err, action)
	}
}

// resolveCustomer resolves the signed-in customer and answers the request itself
// when it cannot.
func resolveCustomer(c *gin.Context) (int64, bool) {
	cache, _ := middleware.GetUserCache(c)
	id, err := service.CurrentCustomerID(c.Request.Context(), cache)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Could not resolve customer", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(c, err, "load user")
		return 0, false
	}
	return id, true
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil {
		return v
	}
	return fallback
}
