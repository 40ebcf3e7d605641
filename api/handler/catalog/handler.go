package catalog

import (
	"fmt"
	"net/http"

	"github.com/anoixa/bandpress/api/common"
	svcCatalog "github.com/anoixa/bandpress/internal/catalog"
	"github.com/anoixa/bandpress/internal/session"
	"github.com/gin-gonic/gin"
)

// 成功提示
const (
	MsgBandAdded         = "Band added successfully"
	MsgMemberAdded       = "Member added successfully"
	MsgAlbumAdded        = "Album added successfully"
	MsgSongAdded         = "Song added successfully"
	MsgSongMemberAdded   = "Member added to song"
	MsgMembershipAdded   = "Membership assigned"
	MsgMembershipUpdated = "Membership updated"
	MsgMembershipRemoved = "Membership removed"
	MsgBandDeleted       = "Band deleted"
	MsgMemberDeleted     = "Member deleted"
	MsgAlbumDeleted      = "Album deleted"
	MsgSongDeleted       = "Song deleted"
	MsgSongMemberRemoved = "Member removed from song"
)

// Handler 乐队目录
type Handler struct {
	svc *svcCatalog.Service
}

// NewHandler 创建目录处理器
func NewHandler(svc *svcCatalog.Service) *Handler {
	return &Handler{svc: svc}
}

// formOptions 渲染表单所需的下拉选项
func (h *Handler) formOptions(c *gin.Context, bands, members, albums, songs bool) {
	data, err := h.svc.FormOptions(c.Request.Context(), bands, members, albums, songs)
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, data)
}

// Index GET /
func (h *Handler) Index(c *gin.Context) {
	sum, err := h.svc.GetSummary(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, sum)
}

// AddBandForm GET /bands/add
func (h *Handler) AddBandForm(c *gin.Context) {
	common.RespondView(c, gin.H{"fields": []string{"bandname", "formedyear", "homelocation"}})
}

// AddBand POST /bands/add
func (h *Handler) AddBand(c *gin.Context) {
	var req bandRequest
	if !common.BindForm(c, &req, "bandname") {
		return
	}
	year, err := optionalInt("formedyear", req.FormedYear)
	if err != nil {
		common.BadRequest(c, err)
		return
	}

	in := svcCatalog.BandInput{Name: req.Name, FormedYear: year, HomeLocation: req.HomeLocation}
	if _, err := h.svc.AddBand(c.Request.Context(), in); err != nil {
		common.HandleError(c, err, "/bands/add")
		return
	}
	common.RedirectWithFlash(c, "/bands/view", session.FlashSuccess, MsgBandAdded)
}

// AddMemberForm GET /members/add
func (h *Handler) AddMemberForm(c *gin.Context) {
	h.formOptions(c, true, false, false, false)
}

// AddMember POST /members/add
func (h *Handler) AddMember(c *gin.Context) {
	var req memberRequest
	if !common.BindForm(c, &req, "membername") {
		return
	}

	in := svcCatalog.MemberInput{Name: req.Name, MainPosition: req.MainPosition}
	if _, err := h.svc.AddMember(c.Request.Context(), in); err != nil {
		common.HandleError(c, err, "/members/add")
		return
	}
	common.RedirectWithFlash(c, "/members/add", session.FlashSuccess, MsgMemberAdded)
}

// AddAlbumForm GET /albums/add
func (h *Handler) AddAlbumForm(c *gin.Context) {
	h.formOptions(c, true, false, false, false)
}

// AddAlbum POST /albums/add
func (h *Handler) AddAlbum(c *gin.Context) {
	var req albumRequest
	if !common.BindForm(c, &req, "albumtitle") {
		return
	}
	year, err := optionalInt("releaseyear", req.ReleaseYear)
	if err != nil {
		common.BadRequest(c, err)
		return
	}

	in := svcCatalog.AlbumInput{Title: req.Title, ReleaseYear: year, BandIDs: req.BandIDs}
	if _, err := h.svc.AddAlbum(c.Request.Context(), in); err != nil {
		common.HandleError(c, err, "/albums/add")
		return
	}
	common.RedirectWithFlash(c, "/albums/add", session.FlashSuccess, MsgAlbumAdded)
}

// AddSongForm GET /song/add
func (h *Handler) AddSongForm(c *gin.Context) {
	h.formOptions(c, true, false, true, false)
}

// AddSong POST /song/add
func (h *Handler) AddSong(c *gin.Context) {
	var req songRequest
	if !common.BindForm(c, &req, "songtitle", "releasetype", "mediarelease") {
		return
	}

	in := svcCatalog.SongInput{
		Title:       req.Title,
		BandID:      req.BandID,
		AlbumID:     req.AlbumID,
		ReleaseType: req.ReleaseType,
		MediaFormat: req.MediaFormat,
		ReleaseYear: req.ReleaseYear,
	}
	if _, err := h.svc.AddSong(c.Request.Context(), in); err != nil {
		common.HandleError(c, err, "/song/add")
		return
	}
	common.RedirectWithFlash(c, "/song/add", session.FlashSuccess, MsgSongAdded)
}

// GetAlbums GET /get_albums/:bandId
// 返回 {"albums":[{"id":..,"title":..}]}，按关联顺序
func (h *Handler) GetAlbums(c *gin.Context) {
	bandID, ok := common.ParamID(c, "bandId")
	if !ok {
		return
	}
	albums, err := h.svc.AlbumsForBand(c.Request.Context(), bandID)
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}

	type albumRef struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	}
	refs := make([]albumRef, len(albums))
	for i, a := range albums {
		refs[i] = albumRef{ID: a.ID, Title: a.Title}
	}
	c.JSON(http.StatusOK, gin.H{"albums": refs})
}

// AddSongMemberForm GET /songmember/add
func (h *Handler) AddSongMemberForm(c *gin.Context) {
	h.formOptions(c, false, true, false, true)
}

// AddSongMember POST /songmember/add
func (h *Handler) AddSongMember(c *gin.Context) {
	var req songMemberRequest
	if !common.BindForm(c, &req, "role") {
		return
	}

	in := svcCatalog.SongMemberInput{SongID: req.SongID, MemberID: req.MemberID, Role: req.Role}
	if _, err := h.svc.AddSongMember(c.Request.Context(), in); err != nil {
		common.HandleError(c, err, "/songmember/add")
		return
	}
	common.RedirectWithFlash(c, "/songmember/add", session.FlashSuccess, MsgSongMemberAdded)
}

func bindMembership(c *gin.Context) (svcCatalog.MembershipInput, bool) {
	var req membershipRequest
	if !common.BindForm(c, &req) {
		return svcCatalog.MembershipInput{}, false
	}
	start, err := optionalInt("startyear", req.StartYear)
	if err != nil {
		common.BadRequest(c, err)
		return svcCatalog.MembershipInput{}, false
	}
	end, err := optionalInt("endyear", req.EndYear)
	if err != nil {
		common.BadRequest(c, err)
		return svcCatalog.MembershipInput{}, false
	}
	return svcCatalog.MembershipInput{
		BandID:    req.BandID,
		MemberID:  req.MemberID,
		Role:      req.Role,
		StartYear: start,
		EndYear:   end,
	}, true
}

// AddMembershipForm GET /memberships/add
func (h *Handler) AddMembershipForm(c *gin.Context) {
	h.formOptions(c, true, true, false, false)
}

// AddMembership POST /memberships/add
func (h *Handler) AddMembership(c *gin.Context) {
	in, ok := bindMembership(c)
	if !ok {
		return
	}
	if _, err := h.svc.AddMembership(c.Request.Context(), in); err != nil {
		common.HandleError(c, err, "/memberships/add")
		return
	}
	common.RedirectWithFlash(c, "/bands/view", session.FlashSuccess, MsgMembershipAdded)
}

// EditMembershipForm GET /memberships/edit/:id
func (h *Handler) EditMembershipForm(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	form, err := h.svc.GetMembershipForm(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err, "/bands/view")
		return
	}
	common.RespondView(c, form)
}

// EditMembership POST /memberships/edit/:id
func (h *Handler) EditMembership(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	in, ok := bindMembership(c)
	if !ok {
		return
	}
	if _, err := h.svc.UpdateMembership(c.Request.Context(), id, in); err != nil {
		common.HandleError(c, err, fmt.Sprintf("/memberships/edit/%d", id))
		return
	}
	common.RedirectWithFlash(c, "/bands/view", session.FlashSuccess, MsgMembershipUpdated)
}

// DeleteMembership GET /memberships/delete/:id
func (h *Handler) DeleteMembership(c *gin.Context) {
	h.deleteBy(c, h.svc.DeleteMembership, "/bands/view", MsgMembershipRemoved)
}

// DeleteBand GET /bands/delete/:id
func (h *Handler) DeleteBand(c *gin.Context) {
	h.deleteBy(c, h.svc.DeleteBand, "/bands/view", MsgBandDeleted)
}

// DeleteMember GET /members/delete/:id
func (h *Handler) DeleteMember(c *gin.Context) {
	h.deleteBy(c, h.svc.DeleteMember, "/admin/data", MsgMemberDeleted)
}

// DeleteAlbum GET /albums/delete/:id
func (h *Handler) DeleteAlbum(c *gin.Context) {
	h.deleteBy(c, h.svc.DeleteAlbum, "/admin/data", MsgAlbumDeleted)
}

// DeleteSong GET /song/delete/:id
func (h *Handler) DeleteSong(c *gin.Context) {
	h.deleteBy(c, h.svc.DeleteSong, "/admin/data", MsgSongDeleted)
}

// DeleteSongMember GET /songmember/delete/:id
func (h *Handler) DeleteSongMember(c *gin.Context) {
	h.deleteBy(c, h.svc.DeleteSongMember, "/admin/data", MsgSongMemberRemoved)
}
