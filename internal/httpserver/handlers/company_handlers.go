package handlers

import (
	"net/http"
	"strings"

	"ddportal/internal/models"
)

const companiesPath = "/admin/companies"

type companiesView struct {
	Companies []models.Company
	Query     string
	Total     int
}

func filterCompanies(cs []models.Company, q string) []models.Company {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return cs
	}
	out := make([]models.Company, 0, len(cs))
	for _, c := range cs {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

func ListCompanies(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		cs, err := d.API.Companies(r.Context())
		if err != nil && loadFailed(d, w, r, err, "Failed to load companies.") {
			return
		}
		render(d, w, r, "companies", "Company Management", companiesView{
			Companies: filterCompanies(cs, q),
			Query:     q,
			Total:     len(cs),
		})
	}
}

func CreateCompany(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.PostFormValue("name"))
		if name == "" {
			invalid(w, r, "Company name is required.", companiesPath)
			return
		}
		if err := d.API.CreateCompany(r.Context(), name); err != nil {
			fail(d, w, r, err, withServerMessage(err, "Failed to create company"), companiesPath)
			return
		}
		audit(d, r, "COMPANY_CREATE", name, nil)
		succeed(w, r, "Company created successfully!", companiesPath)
	}
}

func UpdateCompany(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			http.NotFound(w, r)
			return
		}
		name := strings.TrimSpace(r.PostFormValue("name"))
		if name == "" {
			invalid(w, r, "Company name is required.", companiesPath)
			return
		}
		if err := d.API.UpdateCompany(r.Context(), id, name); err != nil {
			fail(d, w, r, err, withServerMessage(err, "Failed to update company"), companiesPath)
			return
		}
		audit(d, r, "COMPANY_UPDATE", "company:"+id.String(), map[string]interface{}{"name": name})
		succeed(w, r, "Company updated successfully!", companiesPath)
	}
}

func DeleteCompany(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := d.API.DeleteCompany(r.Context(), id); err != nil {
			fail(d, w, r, err, withServerMessage(err, "Failed to delete company"), companiesPath)
			return
		}
		audit(d, r, "COMPANY_DELETE", "company:"+id.String(), nil)
		succeed(w, r, "Company deleted successfully!", companiesPath)
	}
}
