package groomingserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	accountsdomain "github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	accountsports "github.com/tropicbliss/ESD-Project/internal/domains/accounts/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// UserAPI passes user operations through to the user service.
type UserAPI struct {
	service accountsports.Service
}

func NewUserAPI(service accountsports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /user/create
func (api *UserAPI) CreateUser(c *gin.Context) {
	var payload accountsdomain.User
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := api.service.CreateUser(c.Request.Context(), payload); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// Get /user/read/:name
func (api *UserAPI) GetUser(c *gin.Context) {
	user, err := api.service.GetUser(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Post /user/update/:name
func (api *UserAPI) UpdateUser(c *gin.Context) {
	var payload accountsdomain.UserUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := api.service.UpdateUser(c.Request.Context(), c.Param("name"), payload); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// GroomerAPI passes groomer operations through to the groomer service.
type GroomerAPI struct {
	service accountsports.Service
}

func NewGroomerAPI(service accountsports.Service) GroomerAPI {
	return GroomerAPI{service: service}
}

type acceptsPayload struct {
	PetTypes []grooming.PetType `json:"petTypes"`
}

// Post /groomer/create
// Answers 201 with the groomer service's response body.
func (api *GroomerAPI) CreateGroomer(c *gin.Context) {
	var payload accountsdomain.Groomer
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	body, err := api.service.CreateGroomer(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusCreated, "application/json; charset=utf-8", rawOrEmpty(body))
}

// Get /groomer/search/keyword/:keyword
func (api *GroomerAPI) SearchGroomers(c *gin.Context) {
	list, err := api.service.SearchGroomers(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []accountsdomain.Groomer{}
	}
	c.JSON(http.StatusOK, list)
}

// Get /groomer/search/name/:name
func (api *GroomerAPI) GetGroomer(c *gin.Context) {
	groomer, err := api.service.GetGroomer(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groomer)
}

// Post /groomer/update/:name
func (api *GroomerAPI) UpdateGroomer(c *gin.Context) {
	var payload accountsdomain.GroomerUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := api.service.UpdateGroomer(c.Request.Context(), c.Param("name"), payload); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Post /groomer/read
// The body is an optional filter; an empty body lists every groomer.
func (api *GroomerAPI) ListGroomers(c *gin.Context) {
	var filter accountsdomain.GroomerFilter
	if err := c.ShouldBindJSON(&filter); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, err)
		return
	}
	list, err := api.service.ListGroomers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []accountsdomain.Groomer{}
	}
	c.JSON(http.StatusOK, list)
}

// Post /groomer/accepts/:name
// Answers the groomer's price tiers when every listed pet type is accepted.
func (api *GroomerAPI) Accepts(c *gin.Context) {
	var payload acceptsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	quote, err := api.service.Accepts(c.Request.Context(), c.Param("name"), payload.PetTypes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func rawOrEmpty(body json.RawMessage) []byte {
	if len(body) == 0 {
		return []byte("{}")
	}
	return body
}
