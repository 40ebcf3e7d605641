package catalog

import (
	"context"

	"github.com/anoixa/bandpress/api/common"
	"github.com/anoixa/bandpress/internal/session"
	"github.com/gin-gonic/gin"
)

func (h *Handler) deleteBy(c *gin.Context, del func(ctx context.Context, id uint) error, redirectTo, msg string) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		common.HandleError(c, err, redirectTo)
		return
	}
	common.RedirectWithFlash(c, redirectTo, session.FlashSuccess, msg)
}

// ViewBands GET /bands/view
func (h *Handler) ViewBands(c *gin.Context) {
	bands, err := h.svc.ListBands(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, gin.H{"bands": bands})
}

// ViewBand GET /bands/view/:id
func (h *Handler) ViewBand(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	band, err := h.svc.GetBand(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err, "/bands/view")
		return
	}
	common.RespondView(c, gin.H{"bands": []interface{}{band}})
}

// ViewAlbum GET /album/:id
func (h *Handler) ViewAlbum(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.GetAlbumView(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, view)
}

// ViewMember GET /member/:id
func (h *Handler) ViewMember(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.GetMemberView(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, view)
}

// ViewSong GET /song/:id
func (h *Handler) ViewSong(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.GetSongView(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, view)
}

// ManageData GET /admin/data
func (h *Handler) ManageData(c *gin.Context) {
	dump, err := h.svc.Dump(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, dump)
}
