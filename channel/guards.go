// Copyright 2026 PolyCrypt GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package channel

import "github.com/ethereum/go-ethereum/common"

// The guard predicates of §4.E, each returning a distinct, named error
// so every public operation can declare its preconditions as a short
// list of calls instead of inline if-chains.

// onlyParties requires the caller to be one of the channel's two
// parties.
func onlyParties(r Record, caller common.Address) error {
	if caller != r.PartyA && caller != r.PartyB {
		return ErrNotAParticipant
	}
	return nil
}

// isOpen requires the channel to be in the OPEN state.
func isOpen(r Record) error {
	if r.Status != Open {
		return wrongStatus(NotOpen, r.Status)
	}
	return nil
}

// isOnChallenge requires the channel to be in the ON_CHALLENGE state.
func isOnChallenge(r Record) error {
	if r.Status != OnChallenge {
		return wrongStatus(NotOnChallenge, r.Status)
	}
	return nil
}

// notClosed requires the channel to not yet be CLOSED.
func notClosed(r Record) error {
	if r.Status == Closed {
		return wrongStatus(AlreadyClosed, r.Status)
	}
	return nil
}

// isDuringChallengePeriod requires now to be at or before the challenge
// deadline.
func isDuringChallengePeriod(r Record, now uint64) error {
	deadline, overflow := addOverflowU64(r.CloseTime, r.ChallengePeriod)
	if overflow {
		return ErrOverflow
	}
	if now > deadline {
		return ErrChallengePeriodOver
	}
	return nil
}

// challengePeriodWasOver requires now to be strictly after the
// challenge deadline.
func challengePeriodWasOver(r Record, now uint64) error {
	deadline, overflow := addOverflowU64(r.CloseTime, r.ChallengePeriod)
	if overflow {
		return ErrOverflow
	}
	if now <= deadline {
		return ErrChallengePeriodLive
	}
	return nil
}

// addOverflowU64 adds two uint64s with an explicit overflow flag,
// mirroring uint256.Int.AddOverflow for the narrower time-sum checks.
func addOverflowU64(a, b uint64) (sum uint64, overflow bool) {
	sum = a + b
	return sum, sum < a
}
