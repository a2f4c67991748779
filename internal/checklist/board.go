package checklist

import "ddportal/internal/models"

// Board is one snapshot of the checklist dashboard: categories with their
// items, and the displayed response per item id. A Board is never mutated
// after construction.
type Board struct {
	Categories []models.ChecklistCategory
	responses  map[models.ID]models.Response
}

func NewBoard(categories []models.ChecklistCategory, responses []models.Response) *Board {
	b := &Board{Categories: categories, responses: make(map[models.ID]models.Response, len(responses))}
	for _, r := range responses {
		if r.ItemID == 0 {
			continue
		}
		b.responses[r.ItemID] = r
	}
	return b
}

// Response returns a copy of the response shown for itemID, or nil.
func (b *Board) Response(itemID models.ID) *models.Response {
	r, ok := b.responses[itemID]
	if !ok {
		return nil
	}
	return &r
}

// ResponseByID finds a displayed response by its own id.
func (b *Board) ResponseByID(id models.ID) *models.Response {
	for _, r := range b.responses {
		if r.ID == id {
			return &r
		}
	}
	return nil
}

// Answered counts the items that have a response.
func (b *Board) Answered() int {
	n := 0
	for _, c := range b.Categories {
		for _, it := range c.Items {
			if _, ok := b.responses[it.ID]; ok {
				n++
			}
		}
	}
	return n
}

// Merged returns a board where the response for itemID reflects a submission
// the backend just echoed, owned by viewerID.
func (b *Board) Merged(itemID, viewerID models.ID, answer models.Answer, echo models.Response) *Board {
	next := &Board{Categories: b.Categories, responses: make(map[models.ID]models.Response, len(b.responses)+1)}
	for k, v := range b.responses {
		next.responses[k] = v
	}
	r := next.responses[itemID]
	r.ID = echo.ID
	r.ItemID = itemID
	r.UserID = models.SomeID(viewerID)
	r.Response = answer
	r.FilePaths = echo.FilePaths
	if r.FilePaths == nil {
		r.FilePaths = []models.FileRef{}
	}
	if echo.ResponderEmail != "" {
		r.ResponderEmail = echo.ResponderEmail
	}
	next.responses[itemID] = r
	return next
}

type ItemView struct {
	Item     models.ChecklistItem
	Response *models.Response
	Ownership
}

type CategoryView struct {
	Category models.ChecklistCategory
	Items    []ItemView
}

// View resolves every item of the board for viewerID.
func (b *Board) View(viewerID models.ID) []CategoryView {
	out := make([]CategoryView, 0, len(b.Categories))
	for _, c := range b.Categories {
		cv := CategoryView{Category: c, Items: make([]ItemView, 0, len(c.Items))}
		for _, it := range c.Items {
			resp := b.Response(it.ID)
			cv.Items = append(cv.Items, ItemView{Item: it, Response: resp, Ownership: Resolve(viewerID, resp)})
		}
		out = append(out, cv)
	}
	return out
}
