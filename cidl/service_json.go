package cidl

import "encoding/json"

type serviceWire struct {
	Name        string              `json:"name"`
	Attributes  []ServiceAttribute  `json:"attributes"`
	Initializer []string            `json:"initializer,omitempty"`
	Methods     json.RawMessage     `json:"methods"`
	SourcePath  string              `json:"source_path,omitempty"`
}

func (s Service) MarshalJSON() ([]byte, error) {
	methods, err := MarshalOrderedMap(s.Methods)
	if err != nil {
		return nil, err
	}
	return json.Marshal(serviceWire{
		Name:        s.Name,
		Attributes:  s.Attributes,
		Initializer: s.Initializer,
		Methods:     methods,
		SourcePath:  s.SourcePath,
	})
}

func (s *Service) UnmarshalJSON(data []byte) error {
	var w serviceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.Name = w.Name
	s.Attributes = w.Attributes
	s.Initializer = w.Initializer
	s.SourcePath = w.SourcePath

	if len(w.Methods) > 0 {
		methods, err := UnmarshalOrderedMap[ApiMethod](w.Methods)
		if err != nil {
			return err
		}
		s.Methods = methods
	} else {
		s.Methods = NewOrderedMap[ApiMethod]()
	}
	return nil
}
