package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/api/metrics"
	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// JobListingHandler serves job listings.
type JobListingHandler struct {
	jobs ports.JobListingService
}

func NewJobListingHandler(jobs ports.JobListingService) *JobListingHandler {
	return &JobListingHandler{jobs: jobs}
}

type createJobListingRequest struct {
	CityID      int64    `json:"city_id" validate:"required,gt=0"`
	CategoryID  int64    `json:"category_id" validate:"required,gt=0"`
	Title       string   `json:"title" validate:"required,max=50"`
	SalaryMin   *float64 `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax   *float64 `json:"salary_max" validate:"omitempty,gte=0"`
	Description string   `json:"description" validate:"max=1500"`
}

type updateJobListingRequest struct {
	CityID      *int64        `json:"city_id" validate:"omitempty,gt=0"`
	CategoryID  *int64        `json:"category_id" validate:"omitempty,gt=0"`
	Title       *string       `json:"title" validate:"omitempty,min=1,max=50"`
	SalaryMin   nullableFloat `json:"salary_min"`
	SalaryMax   nullableFloat `json:"salary_max"`
	Description *string       `json:"description" validate:"omitempty,max=1500"`
}

// List searches job listings.
//
// @Summary      Search job listings
// @Tags         job-listings
// @Produce      json
// @Param        city_id      query     int     false  "City id"
// @Param        user_id      query     int     false  "Owner account id"
// @Param        category_id  query     int     false  "Job category id"
// @Param        search       query     string  false  "Substring of the title"
// @Param        ordering     query     string  false  "salary_min, salary_max or creation_date, optionally prefixed with -"
// @Param        limit        query     int     false  "Page size (max 100)"
// @Param        offset       query     int     false  "Page offset"
// @Success      200          {object}  pageResponse[jobListingResponse]
// @Failure      400          {object}  errorBody
// @Router       /job-listings [get]
func (h *JobListingHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}

	page, err := h.jobs.List(c.Request().Context(), ports.JobListingFilter{
		CityID:     q.CityID,
		UserID:     q.UserID,
		CategoryID: q.CategoryID,
		Search:     q.Search,
		Ordering:   q.Ordering,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pageResponse[jobListingResponse]{
		Count:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		Results: toJobListingResponses(page.Items),
	})
}

// Get returns a single job listing.
//
// @Summary      Get a job listing
// @Tags         job-listings
// @Produce      json
// @Param        id   path      int  true  "Job listing id"
// @Success      200  {object}  jobListingResponse
// @Failure      404  {object}  errorBody
// @Router       /job-listings/{id} [get]
func (h *JobListingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	j, err := h.jobs.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobListingResponse(j))
}

// Create publishes a job listing owned by the caller.
//
// @Summary      Create a job listing
// @Tags         job-listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createJobListingRequest  true  "Job listing"
// @Success      201   {object}  jobListingResponse
// @Failure      400   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Router       /job-listings [post]
func (h *JobListingHandler) Create(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	var req createJobListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	j, err := h.jobs.Create(c.Request().Context(), accountID, ports.JobListingInput{
		CityID:      &req.CityID,
		CategoryID:  &req.CategoryID,
		Title:       &req.Title,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Description: &req.Description,
	})
	if err != nil {
		return err
	}

	metrics.ListingsCreatedTotal.WithLabelValues(string(domain.FavouriteJobListing)).Inc()
	return c.JSON(http.StatusCreated, toJobListingResponse(j))
}

// Update changes a job listing owned by the caller.
//
// @Summary      Update a job listing
// @Tags         job-listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                      true  "Job listing id"
// @Param        body  body      updateJobListingRequest  true  "Fields to change"
// @Success      200   {object}  jobListingResponse
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /job-listings/{id} [patch]
func (h *JobListingHandler) Update(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateJobListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.JobListingInput{
		CityID:      req.CityID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.SalaryMin.Set {
		in.SalaryMin = req.SalaryMin.Value
		in.ClearSalaryMin = req.SalaryMin.Value == nil
	}
	if req.SalaryMax.Set {
		in.SalaryMax = req.SalaryMax.Value
		in.ClearSalaryMax = req.SalaryMax.Value == nil
	}

	j, err := h.jobs.Update(c.Request().Context(), accountID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobListingResponse(j))
}

// Delete removes a job listing owned by the caller.
//
// @Summary      Delete a job listing
// @Tags         job-listings
// @Security     BearerAuth
// @Param        id   path  int  true  "Job listing id"
// @Success      204
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /job-listings/{id} [delete]
func (h *JobListingHandler) Delete(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.jobs.Delete(c.Request().Context(), accountID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
