/*
Package yaml provides methods to parse feature.Feature definitions
also known as metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"io/ioutil"

	"github.com/pbanos/grove/feature"
	yaml "gopkg.in/yaml.v2"
)

/*
Metadata describes the columns of a table a forest is grown from or applied
to: the ordered features encoded into each row, the label to predict and
the name of the identifier column of prediction tables.
*/
type Metadata struct {
	Features []feature.Feature
	Label    *feature.Label
	ID       string
}

/*
ReadMetadata takes a slice of bytes with feature definitions in YML and
returns the metadata parsed from it or an error.
The YML is expected to be an object containing a features property. The value for this
should be an object with a property for each feature with its name and either a
string value of 'continuous' for continuous features or a list of valid values
for discrete features. The order of the properties is the order of the values
in encoded rows. The object may also contain:
  * a label property with the name of the label column (defaults to Survived)
  * an id property with the name of the identifier column (defaults to PassengerId)
  * a lenient property listing discrete features that encode unknown values
    as their first available value instead of failing
*/
func ReadMetadata(md []byte) (*Metadata, error) {
	metadata := struct {
		Features yaml.MapSlice
		Label    string
		ID       string `yaml:"id"`
		Lenient  []string
	}{}
	err := yaml.Unmarshal(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml features: %v", err)
	}
	if len(metadata.Features) == 0 {
		return nil, fmt.Errorf("metadata file has no feature information")
	}
	lenient := make(map[string]bool)
	for _, name := range metadata.Lenient {
		lenient[name] = true
	}
	result := &Metadata{ID: metadata.ID}
	for _, item := range metadata.Features {
		fn := fmt.Sprintf("%v", item.Key)
		switch values := item.Value.(type) {
		case string:
			if values != "continuous" {
				return nil, fmt.Errorf("invalid declaration %q for feature %s", values, fn)
			}
			result.Features = append(result.Features, feature.NewContinuousFeature(fn))
		case []interface{}:
			stringVs := []string{}
			for _, v := range values {
				stringVs = append(stringVs, fmt.Sprintf("%v", v))
			}
			if lenient[fn] {
				result.Features = append(result.Features, feature.NewLenientDiscreteFeature(fn, stringVs))
			} else {
				result.Features = append(result.Features, feature.NewDiscreteFeature(fn, stringVs))
			}
		default:
			return nil, fmt.Errorf("invalid feature declaration of type %T", item.Value)
		}
		delete(lenient, fn)
	}
	for name := range lenient {
		return nil, fmt.Errorf("lenient feature %s is not declared", name)
	}
	if metadata.Label == "" {
		metadata.Label = "Survived"
	}
	for _, f := range result.Features {
		if f.Name() == metadata.Label {
			return nil, fmt.Errorf("label %s cannot also be a feature", metadata.Label)
		}
	}
	result.Label = feature.NewLabel(metadata.Label)
	if result.ID == "" {
		result.ID = "PassengerId"
	}
	return result, nil
}

/*
ReadMetadataFromFile takes a filepath string, reads its contents and uses
ReadMetadata to parse it and return the parsed metadata or an error.
If the file indicated by the filepath cannot be opened for reading an error
will be returned.
*/
func ReadMetadataFromFile(filepath string) (*Metadata, error) {
	md, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading features yml file %s: %v", filepath, err)
	}
	metadata, err := ReadMetadata(md)
	if err != nil {
		err = fmt.Errorf("parsing features yml file %s: %v", filepath, err)
	}
	return metadata, err
}

/*
DefaultMetadata returns the metadata for passenger tables: Pclass, Sex,
SibSp and Parch features, the Survived label and the PassengerId
identifier column. When lenient is true, unknown Sex values are
encoded as male instead of failing.
*/
func DefaultMetadata(lenient bool) *Metadata {
	features, label := feature.Passenger()
	if lenient {
		for i, f := range features {
			if df, ok := f.(*feature.DiscreteFeature); ok {
				features[i] = feature.NewLenientDiscreteFeature(df.Name(), df.AvailableValues())
			}
		}
	}
	return &Metadata{Features: features, Label: label, ID: "PassengerId"}
}
