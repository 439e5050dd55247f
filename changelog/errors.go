package changelog

import "fmt"

// ParseError is a construction failure inside a changeset block
type ParseError struct {
	ChangeSetID string
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("changeSetId: %s. %v", e.ChangeSetID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RollbackImpossibleError reports a rollback target that was not defined before the referencing changeset
type RollbackImpossibleError struct {
	ID     string
	Author string
	Path   string
}

func (e *RollbackImpossibleError) Error() string {
	return fmt.Sprintf("rollback impossible: changeset %s::%s::%s not found", e.Path, e.ID, e.Author)
}

// DuplicateChangeSetError reports two changesets with the same identity in one changelog
type DuplicateChangeSetError struct {
	ID       string
	Author   string
	FilePath string
}

func (e *DuplicateChangeSetError) Error() string {
	return fmt.Sprintf("duplicate changeset %s::%s::%s", e.FilePath, e.ID, e.Author)
}
