package indexer

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Service struct {
	engine     *gin.Engine
	store      Store
	listenAddr string
}

func NewService(listenAddr string, store Store) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		store:      store,
		listenAddr: listenAddr,
	}
	s.engine.POST("/getAccessProposals", s.handleGetAccessProposals)
	s.engine.POST("/getProjectProposals", s.handleGetProjectProposals)
	s.engine.POST("/getVotes", s.handleGetVotes)
	return s
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

func (s *Service) Start() error {
	return s.engine.Run(s.listenAddr)
}

type GetProposalsReq struct {
	ProposalId *uint32 `json:"proposalId"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
}

func (r *GetProposalsReq) normalize() {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.PageSize <= 0 || r.PageSize > 100 {
		r.PageSize = 20
	}
}

type GetAccessProposalsResponse struct {
	Proposals []AccessProposal `json:"proposals"`
	Total     uint64           `json:"total"`
}

func (s *Service) handleGetAccessProposals(c *gin.Context) {
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requestData.normalize()
	response := GetAccessProposalsResponse{Proposals: make([]AccessProposal, 0)}

	if requestData.ProposalId != nil {
		p, err := s.store.GetAccessProposal(*requestData.ProposalId)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		response.Proposals = append(response.Proposals, *p)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}

	proposals, total, err := s.store.AccessProposals(requestData.Page, requestData.PageSize)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	response.Proposals = append(response.Proposals, proposals...)
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type ProjectProposalInfo struct {
	Proposal ProjectProposal `json:"proposal"`
	Rounds   []ProjectRound  `json:"rounds"`
}

type GetProjectProposalsResponse struct {
	Proposals []ProjectProposalInfo `json:"proposals"`
	Total     uint64                `json:"total"`
}

func (s *Service) projectInfo(p ProjectProposal) (ProjectProposalInfo, error) {
	rounds, err := s.store.ProjectRounds(p.Proposal)
	if err != nil {
		return ProjectProposalInfo{}, err
	}
	if rounds == nil {
		rounds = make([]ProjectRound, 0)
	}
	return ProjectProposalInfo{Proposal: p, Rounds: rounds}, nil
}

func (s *Service) handleGetProjectProposals(c *gin.Context) {
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requestData.normalize()
	response := GetProjectProposalsResponse{Proposals: make([]ProjectProposalInfo, 0)}

	var proposals []ProjectProposal
	if requestData.ProposalId != nil {
		p, err := s.store.GetProjectProposal(*requestData.ProposalId)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		proposals = []ProjectProposal{*p}
		response.Total = 1
	} else {
		var err error
		proposals, response.Total, err = s.store.ProjectProposals(requestData.Page, requestData.PageSize)
		if err != nil {
			writeStoreError(c, err)
			return
		}
	}

	for _, p := range proposals {
		info, err := s.projectInfo(p)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		response.Proposals = append(response.Proposals, info)
	}
	c.JSON(http.StatusOK, response)
}

type GetVotesReq struct {
	Kind       string  `json:"kind"`
	ProposalId *uint32 `json:"proposalId"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []Vote `json:"votes"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.ProposalId == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposalId is required"})
		return
	}
	if requestData.Kind != VoteKindAccess && requestData.Kind != VoteKindProject {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be access or project"})
		return
	}
	page := GetProposalsReq{Page: requestData.Page, PageSize: requestData.PageSize}
	page.normalize()

	votes, err := s.store.Votes(requestData.Kind, *requestData.ProposalId, page.Page, page.PageSize)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	response := GetVotesResponse{Votes: make([]Vote, 0, len(votes))}
	response.Votes = append(response.Votes, votes...)
	c.JSON(http.StatusOK, response)
}

func writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
