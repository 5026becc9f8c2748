package indexer

import (
	"errors"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

var ErrNotFound = errors.New("record not found")

// Store keeps what the indexer learnt from the chain.
type Store interface {
	LastHeight() (int64, error)
	SaveHeight(height int64) error

	GetAccessProposal(id uint32) (*AccessProposal, error)
	SaveAccessProposal(p *AccessProposal) error
	AccessProposals(page, pageSize int) ([]AccessProposal, uint64, error)

	GetProjectProposal(id uint32) (*ProjectProposal, error)
	SaveProjectProposal(p *ProjectProposal) error
	ProjectProposals(page, pageSize int) ([]ProjectProposal, uint64, error)

	SaveProjectRound(r *ProjectRound) error
	ProjectRounds(proposal uint32) ([]ProjectRound, error)

	SaveVote(v *Vote) error
	Votes(kind string, proposal uint32, page, pageSize int) ([]Vote, error)

	Close() error
}

type sqlStore struct {
	db *gorm.DB
}

var _ Store = (*sqlStore)(nil)

func OpenStore(dbPath string) (Store, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Height{}, &AccessProposal{}, &ProjectProposal{}, &ProjectRound{}, &Vote{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return &sqlStore{db: db}, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) LastHeight() (int64, error) {
	h := Height{Id: 1}
	if err := s.db.First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return int64(h.Height), nil
}

func (s *sqlStore) SaveHeight(height int64) error {
	return s.db.Save(&Height{Id: 1, Height: uint64(height)}).Error
}

func (s *sqlStore) first(out any, proposal uint32) error {
	err := s.db.Where("proposal = ?", proposal).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *sqlStore) GetAccessProposal(id uint32) (*AccessProposal, error) {
	var p AccessProposal
	if err := s.first(&p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *sqlStore) SaveAccessProposal(p *AccessProposal) error {
	return s.db.Save(p).Error
}

func (s *sqlStore) AccessProposals(page, pageSize int) ([]AccessProposal, uint64, error) {
	var proposals []AccessProposal
	err := s.db.Order("proposal desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = s.db.Model(&AccessProposal{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (s *sqlStore) GetProjectProposal(id uint32) (*ProjectProposal, error) {
	var p ProjectProposal
	if err := s.first(&p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *sqlStore) SaveProjectProposal(p *ProjectProposal) error {
	return s.db.Save(p).Error
}

func (s *sqlStore) ProjectProposals(page, pageSize int) ([]ProjectProposal, uint64, error) {
	var proposals []ProjectProposal
	err := s.db.Order("proposal desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = s.db.Model(&ProjectProposal{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (s *sqlStore) SaveProjectRound(r *ProjectRound) error {
	return s.db.Create(r).Error
}

func (s *sqlStore) ProjectRounds(proposal uint32) ([]ProjectRound, error) {
	var rounds []ProjectRound
	err := s.db.Where("proposal = ?", proposal).Order("id asc").Find(&rounds).Error
	return rounds, err
}

func (s *sqlStore) SaveVote(v *Vote) error {
	return s.db.Create(v).Error
}

func (s *sqlStore) Votes(kind string, proposal uint32, page, pageSize int) ([]Vote, error) {
	var votes []Vote
	err := s.db.Where("kind = ? AND proposal = ?", kind, proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}
