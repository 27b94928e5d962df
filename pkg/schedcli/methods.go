package schedcli

import (
	"encoding/json"

	"github.com/shiftdl/shiftdl/common"
)

func invoke[T any](c *Client, method common.Method, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	if len(resp) == 0 {
		return &d, nil
	}
	return &d, json.Unmarshal(resp, &d)
}

// Submit registers a new schedule entry and returns its identifier and
// initial state.
func (c *Client) Submit(priority int32, resumable bool) (*common.SubmitResponse, error) {
	return invoke[common.SubmitResponse](c, common.MethodSubmit, &common.SubmitParams{
		Priority:  priority,
		Resumable: resumable,
	})
}

// Remove deletes a schedule entry.
func (c *Client) Remove(entryId string) error {
	_, err := c.invoke(common.MethodRemove, &common.EntryIdParams{EntryId: entryId})
	return err
}

// Hold places a named hold on an entry, vetoing its activation.
func (c *Client) Hold(entryId, key string) error {
	_, err := c.invoke(common.MethodHold, &common.HoldParams{EntryId: entryId, Key: key})
	return err
}

// Release removes a named hold from an entry.
func (c *Client) Release(entryId, key string) error {
	_, err := c.invoke(common.MethodRelease, &common.HoldParams{EntryId: entryId, Key: key})
	return err
}

// ReportUsage reports bytes transferred by an entry for capacity
// accounting.
func (c *Client) ReportUsage(entryId string, bytes uint64) error {
	_, err := c.invoke(common.MethodUsage, &common.UsageParams{EntryId: entryId, Bytes: bytes})
	return err
}

// List returns all schedule entries in scheduling order.
func (c *Client) List() (*common.ListResponse, error) {
	return invoke[common.ListResponse](c, common.MethodList, nil)
}

// Version returns the daemon's version information.
func (c *Client) Version() (*common.VersionResponse, error) {
	return invoke[common.VersionResponse](c, common.MethodVersion, nil)
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() error {
	_, err := c.invoke(common.MethodStop, nil)
	return err
}

// Watch subscribes this connection to schedule change pushes and registers
// the given callback for them. Call Listen afterwards to consume pushes.
func (c *Client) Watch(fn func(*common.StateChangeUpdate) error) error {
	c.d.Handle(common.UpdateStateChange, func(body json.RawMessage) error {
		var u common.StateChangeUpdate
		if err := json.Unmarshal(body, &u); err != nil {
			return err
		}
		return fn(&u)
	})
	_, err := c.invoke(common.MethodWatch, nil)
	return err
}
